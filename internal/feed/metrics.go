package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contentHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babble_feed_content_cache_hits_total",
		Help: "Feed pointers resolved from the content cache.",
	})
	contentMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babble_feed_content_cache_misses_total",
		Help: "Feed pointers that fell through to the authoritative store.",
	})
	fanoutPushes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babble_feed_fanout_pushes_total",
		Help: "Pointers pushed into follower feed indexes at write time.",
	})
	prunedPointers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babble_feed_pruned_pointers_total",
		Help: "Stale pointers removed from feed indexes during reads.",
	})
	coldRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "babble_feed_cold_rebuilds_total",
		Help: "Timeline reads served by rebuilding the feed index from the store.",
	})
)
