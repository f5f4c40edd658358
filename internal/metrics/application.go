package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SocialMetrics tracks engagement on the HTTP surface
type SocialMetrics struct {
	PostsCreated   prometheus.Counter
	NotesCreated   prometheus.Counter
	StoriesCreated *prometheus.CounterVec
	CommentsTotal  prometheus.Counter
	LikesTotal     *prometheus.CounterVec
	SharesTotal    prometheus.Counter
	FollowsTotal   *prometheus.CounterVec
	ExpiredPurged  *prometheus.CounterVec
}

func newSocialMetrics() *SocialMetrics {
	return &SocialMetrics{
		PostsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Posts created",
		}),
		NotesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notes_created_total",
			Help: "Notes created",
		}),
		StoriesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stories_created_total",
			Help: "Stories created by media type",
		}, []string{"type"}),
		CommentsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "comments_total",
			Help: "Comments created",
		}),
		LikesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "likes_total",
			Help: "Like toggles by resulting action",
		}, []string{"action"}),
		SharesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shares_total",
			Help: "Post shares",
		}),
		FollowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "follows_total",
			Help: "Follow toggles by resulting action",
		}, []string{"action"}),
		ExpiredPurged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "expired_records_purged_total",
			Help: "Expired notes and stories removed by the sweeper",
		}, []string{"kind"}),
	}
}

// RecordDatabaseConnect records one connection attempt
func RecordDatabaseConnect(duration time.Duration, err error) {
	m := Get()
	m.DatabaseConnectAttempts.WithLabelValues(status(err)).Inc()
	m.DatabaseConnectDuration.Observe(duration.Seconds())
}

// RecordChatAppend records one append transaction
func RecordChatAppend(duration time.Duration, err error) {
	m := Get()
	m.ChatAppendsTotal.WithLabelValues(status(err)).Inc()
	m.ChatAppendDuration.Observe(duration.Seconds())
}

// RecordRealtimeEvent counts one dispatched gateway event
func RecordRealtimeEvent(eventType string, err error) {
	Get().WebSocketMessagesTotal.WithLabelValues(eventType, status(err)).Inc()
}

// RecordBlobUpload counts one blob upload
func RecordBlobUpload(folder string, size int, err error) {
	m := Get()
	m.BlobUploadsTotal.WithLabelValues(folder, status(err)).Inc()
	if err == nil {
		m.BlobUploadBytes.Observe(float64(size))
	}
}

// RecordRateLimitExceeded counts a rejected request or frame
func RecordRateLimitExceeded(scope string) {
	Get().RateLimitExceededTotal.WithLabelValues(scope).Inc()
}

// RecordError counts an error surfaced to a client
func RecordError(errorType, endpoint string) {
	Get().ErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}
