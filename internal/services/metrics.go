package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imagesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_images_resolved_total",
			Help: "Recipe images resolved on create or update, by source",
		},
		[]string{"source"},
	)

	recipesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_writes_total",
			Help: "Successful recipe writes by operation",
		},
		[]string{"operation"},
	)
)
