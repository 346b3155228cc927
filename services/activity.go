package services

import (
	"context"
	"strings"

	"github.com/kendall-kelly/mill-ops-console/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecentActivityLimit is how many entries the main dashboard shows
const RecentActivityLimit = 8

type actorKey struct{}

// WithActor returns a context carrying the id of the staff user performing the request
func WithActor(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the acting user id stored by WithActor, or nil
func ActorFromContext(ctx context.Context) *uint {
	if id, ok := ctx.Value(actorKey{}).(uint); ok {
		return &id
	}
	return nil
}

// ActivityService appends to and reads the activity trail
type ActivityService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewActivityService creates an activity service
func NewActivityService(db *gorm.DB, logger *zap.Logger) *ActivityService {
	return &ActivityService{db: db, logger: logger}
}

// Record appends an entry attributed to the actor in ctx.
// It is called after the domain write has committed, and a failure here is logged and swallowed
// so the mutation it describes stands.
func (s *ActivityService) Record(ctx context.Context, entry models.ActivityLog) {
	entry.ID = 0
	entry.UserID = ActorFromContext(ctx)

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("activity_type", entry.ActivityType),
			zap.String("description", entry.Description),
			zap.Error(err),
		)
	}
}

// Recent returns up to limit entries, newest first
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// ActivityEntry is an activity log entry decorated for the dashboard feed
type ActivityEntry struct {
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	Icon        string `json:"icon"`
	IconColor   string `json:"icon_color"`
	Category    string `json:"category"`
}

type activityStyle struct {
	icon  string
	color string
}

const (
	colorClient  = "rgba(14, 116, 144, 0.2)"
	colorOrder   = "rgba(59, 130, 246, 0.2)"
	colorDelete  = "rgba(239, 68, 68, 0.2)"
	colorPayment = "rgba(16, 185, 129, 0.2)"
	colorStock   = "rgba(245, 158, 11, 0.2)"
)

var activityStyles = map[string]activityStyle{
	models.ActivityClientCreated:   {"users", colorClient},
	models.ActivityClientUpdated:   {"users", colorClient},
	models.ActivityClientDeleted:   {"package-x", colorDelete},
	models.ActivityOrderCreated:    {"package", colorOrder},
	models.ActivityOrderUpdated:    {"package-open", colorOrder},
	models.ActivityOrderDeleted:    {"package-x", colorDelete},
	models.ActivityPaymentRecorded: {"credit-card", colorPayment},
	models.ActivityInvoiceUpdated:  {"credit-card", colorPayment},
	models.ActivityInvoiceDeleted:  {"credit-card", colorDelete},
	models.ActivityMaterialCreated: {"book-open", colorStock},
	models.ActivityMaterialUpdated: {"book-open", colorStock},
	models.ActivityMaterialDeleted: {"book-x", colorDelete},
	models.ActivityReorderCreated:  {"truck", colorStock},
}

var defaultActivityStyle = activityStyle{"circle", "rgba(107, 114, 128, 0.2)"}

// DecorateActivity maps a log entry to its dashboard presentation
func DecorateActivity(log models.ActivityLog) ActivityEntry {
	style, ok := activityStyles[log.ActivityType]
	if !ok {
		style = defaultActivityStyle
	}

	category, _, _ := strings.Cut(log.ActivityType, "_")

	return ActivityEntry{
		Description: log.Description,
		Timestamp:   log.CreatedAt.Format("Jan 02"),
		Icon:        style.icon,
		IconColor:   style.color,
		Category:    category,
	}
}
