package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// CommunitiesCreated counts successfully persisted communities.
	CommunitiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_communities_created_total",
		Help: "Total number of communities created",
	})

	// CommunityCreateFailures counts rejected community creations by reason.
	CommunityCreateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_community_create_failures_total",
		Help: "Total number of failed community creations by reason",
	}, []string{"reason"})

	// PostsCreated counts successfully persisted posts.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_posts_created_total",
		Help: "Total number of posts created",
	})

	// CommentsCreated counts successfully persisted comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_comments_created_total",
		Help: "Total number of comments created",
	})

	// VotesCast counts recorded votes by target and vote type.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_votes_total",
		Help: "Total number of votes recorded by target and type",
	}, []string{"target", "type"})

	// WebSocketDrops counts realtime messages dropped for slow or closed clients.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_websocket_drops_total",
		Help: "Total number of WebSocket messages dropped by reason",
	}, []string{"reason"})

	// ActiveWebSockets is the number of open realtime connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forum_active_websockets",
		Help: "Number of active WebSocket connections",
	})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics middleware.
// fiberprometheus registers on the default registry, so it is only built once.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}
