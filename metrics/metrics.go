// Package metrics provides Prometheus instrumentation for the voice pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "voice"

var (
	// transcriptionDuration is a histogram of speech-to-text call duration.
	transcriptionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Duration of speech-to-text calls in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// transcriptionsTotal is a counter of speech-to-text calls.
	transcriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Total number of speech-to-text calls",
		},
		[]string{"provider", "status"}, // status: success, error
	)

	// synthesisDuration is a histogram of text-to-speech call duration.
	synthesisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_duration_seconds",
			Help:      "Duration of text-to-speech calls in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// synthesesTotal is a counter of text-to-speech calls.
	synthesesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syntheses_total",
			Help:      "Total number of text-to-speech calls",
		},
		[]string{"provider", "status"},
	)

	// conversionDuration is a histogram of ffmpeg conversion duration.
	conversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Duration of audio format conversions in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"direction"}, // direction: transcription, platform
	)

	// conversionsTotal is a counter of audio format conversions.
	conversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Total number of audio format conversions",
		},
		[]string{"direction", "status"},
	)

	// allMetrics is a list of all metrics for registration.
	allMetrics = []prometheus.Collector{
		transcriptionDuration,
		transcriptionsTotal,
		synthesisDuration,
		synthesesTotal,
		conversionDuration,
		conversionsTotal,
	}
)

// RecordTranscription records a speech-to-text call.
func RecordTranscription(provider, status string, durationSeconds float64) {
	transcriptionDuration.WithLabelValues(provider).Observe(durationSeconds)
	transcriptionsTotal.WithLabelValues(provider, status).Inc()
}

// RecordSynthesis records a text-to-speech call.
func RecordSynthesis(provider, status string, durationSeconds float64) {
	synthesisDuration.WithLabelValues(provider).Observe(durationSeconds)
	synthesesTotal.WithLabelValues(provider, status).Inc()
}

// RecordConversion records an audio format conversion.
func RecordConversion(direction, status string, durationSeconds float64) {
	conversionDuration.WithLabelValues(direction).Observe(durationSeconds)
	conversionsTotal.WithLabelValues(direction, status).Inc()
}
