package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kendall-kelly/mill-ops-console/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Client status filters
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// LookupLimit caps the client autocomplete results
const LookupLimit = 10

// ClientInput is the submitted client form
type ClientInput struct {
	Name     string
	Email    string
	Phone    string
	Company  string
	IsActive bool
	Avatar   *multipart.FileHeader
}

// ClientStats summarize the client base
type ClientStats struct {
	Total     int64 `json:"total_clients"`
	Active    int64 `json:"active_clients"`
	Inactive  int64 `json:"inactive_clients"`
	ThisMonth int64 `json:"this_month_clients"`
}

// ClientMatch is one autocomplete result
type ClientMatch struct {
	ID      uint   `json:"id"`
	Display string `json:"display"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// ClientService manages clients and their avatars
type ClientService struct {
	db       *gorm.DB
	logger   *zap.Logger
	images   ImageService
	activity *ActivityService
	now      func() time.Time
}

// NewClientService creates a client service. images may be nil, in which case avatar uploads are ignored.
func NewClientService(db *gorm.DB, logger *zap.Logger, images ImageService) *ClientService {
	return &ClientService{
		db:       db,
		logger:   logger,
		images:   images,
		activity: NewActivityService(db, logger),
		now:      time.Now,
	}
}

// List searches clients by name, surname, company or id and filters by active status
func (s *ClientService) List(ctx context.Context, search, status string) ([]models.Client, error) {
	query := s.db.WithContext(ctx).Model(&models.Client{})

	if search = strings.TrimSpace(search); search != "" {
		conditions := s.db.Where("LOWER(name) LIKE ? ESCAPE '\\'", prefixPattern(search)).
			Or("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(" "+search)).
			Or("LOWER(company) LIKE ? ESCAPE '\\'", prefixPattern(search))
		if id, ok := numericTerm(search); ok {
			conditions = conditions.Or("id = ?", id)
		}
		query = query.Where(conditions)
	}

	switch status {
	case ClientStatusActive:
		query = query.Where("is_active = ?", true)
	case ClientStatusInactive:
		query = query.Where("is_active = ?", false)
	}

	var clients []models.Client
	if err := query.Order("id").Find(&clients).Error; err != nil {
		return nil, err
	}
	for i := range clients {
		s.withAvatarURL(&clients[i])
	}
	return clients, nil
}

// Stats counts clients overall, by status and created since the start of the month
func (s *ClientService) Stats(ctx context.Context) (ClientStats, error) {
	var stats ClientStats
	db := s.db.WithContext(ctx)

	now := s.now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Total, db.Model(&models.Client{})},
		{&stats.Active, db.Model(&models.Client{}).Where("is_active = ?", true)},
		{&stats.Inactive, db.Model(&models.Client{}).Where("is_active = ?", false)},
		{&stats.ThisMonth, db.Model(&models.Client{}).Where("created_at >= ?", startOfMonth)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Save creates a client when id is 0 and updates client id otherwise
func (s *ClientService) Save(ctx context.Context, id uint, input ClientInput) (*models.Client, []Notice, error) {
	client := &models.Client{}
	if id != 0 {
		var err error
		if client, err = s.find(ctx, id); err != nil {
			return nil, nil, err
		}
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, invalid("Client name is required.")
	}
	email := strings.TrimSpace(input.Email)
	if email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			return nil, nil, invalid("Enter a valid email address.")
		}
	}

	previousAvatar := client.Avatar
	if input.Avatar != nil && s.images != nil {
		key, err := s.images.UploadImage(input.Avatar)
		if err != nil {
			return nil, nil, err
		}
		client.Avatar = &key
	}

	client.Name = name
	client.Email = email
	client.Phone = strings.TrimSpace(input.Phone)
	client.Company = strings.TrimSpace(input.Company)
	client.IsActive = input.IsActive

	db := s.db.WithContext(ctx).Omit(clause.Associations)
	var err error
	if id == 0 {
		err = db.Create(client).Error
	} else {
		err = db.Save(client).Error
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save client: %w", err)
	}

	if previousAvatar != nil && client.Avatar != previousAvatar {
		s.deleteAvatar(*previousAvatar)
	}

	entry := models.ActivityLog{
		ActivityType: models.ActivityClientCreated,
		Description:  fmt.Sprintf("New client created: %s", client.Name),
		ClientID:     &client.ID,
	}
	action := "added"
	if id != 0 {
		entry.ActivityType = models.ActivityClientUpdated
		entry.Description = fmt.Sprintf("Client updated: %s", client.Name)
		action = "updated"
	}
	s.activity.Record(ctx, entry)

	s.withAvatarURL(client)
	return client, []Notice{notice(NoticeSuccess, "Client %s successfully.", action)}, nil
}

// Delete removes a client with its orders and their invoices
func (s *ClientService) Delete(ctx context.Context, id uint) ([]Notice, error) {
	client, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderIDs := tx.Model(&models.Order{}).Select("id").Where("client_id = ?", client.ID)
		if err := tx.Where("order_id IN (?)", orderIDs).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		return tx.Delete(client).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete client: %w", err)
	}

	if client.Avatar != nil {
		s.deleteAvatar(*client.Avatar)
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityClientDeleted,
		Description:  fmt.Sprintf("Client deleted: %s", client.Name),
		ClientID:     &client.ID,
	})

	return []Notice{notice(NoticeSuccess, "Client '%s' deleted successfully.", client.Name)}, nil
}

// Lookup returns up to LookupLimit clients whose name or email contains query.
// Queries shorter than two characters match nothing.
func (s *ClientService) Lookup(ctx context.Context, query string) ([]ClientMatch, error) {
	matches := []ClientMatch{}
	if utf8.RuneCountInString(query) < 2 {
		return matches, nil
	}

	pattern := containsPattern(query)
	var clients []models.Client
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("id").
		Limit(LookupLimit).
		Find(&clients).Error
	if err != nil {
		return nil, err
	}

	for _, c := range clients {
		matches = append(matches, ClientMatch{
			ID:      c.ID,
			Display: fmt.Sprintf("%s – %s", c.DisplayCode(), c.Name),
			Name:    c.Name,
			Email:   c.Email,
		})
	}
	return matches, nil
}

func (s *ClientService) find(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Client", ID: id}
		}
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) withAvatarURL(client *models.Client) {
	if client.Avatar == nil || s.images == nil {
		return
	}
	url, err := s.images.GetImageURL(*client.Avatar)
	if err != nil {
		s.logger.Warn("failed to resolve avatar url", zap.Uint("client_id", client.ID), zap.Error(err))
		return
	}
	client.AvatarURL = &url
}

func (s *ClientService) deleteAvatar(key string) {
	if s.images == nil {
		return
	}
	if err := s.images.DeleteImage(key); err != nil {
		s.logger.Warn("failed to delete avatar", zap.String("key", key), zap.Error(err))
	}
}
