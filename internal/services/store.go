package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Store is the persistence surface the conversation engine needs.
type Store interface {
	GetUser(ctx context.Context, facebookID string) (*models.User, error)
	EnsureUser(ctx context.Context, facebookID string) (*models.User, error)
	UsersByRole(ctx context.Context, role string) ([]models.User, error)
	SetRole(ctx context.Context, facebookID, role string) error
	SetReporting(ctx context.Context, facebookID string, reportID uint) error
	SetPosting(ctx context.Context, facebookID string, postID uint) error

	CreateReport(ctx context.Context, reporterID, reportType string) (*models.Report, error)
	GetReport(ctx context.Context, id uint) (*models.Report, error)
	LatestReport(ctx context.Context, reporterID string) (*models.Report, error)
	ListReports(ctx context.Context, limit, offset int) ([]models.Report, int64, error)
	InsertMessage(ctx context.Context, reportID uint, text, msgType string) error
	ReportMessages(ctx context.Context, reportID uint) ([]models.Message, error)

	CreatePost(ctx context.Context, userID string) (*models.Post, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	SavePost(ctx context.Context, post *models.Post) error
	LatestPosts(ctx context.Context, limit int) ([]models.Post, error)
}

// GormStore implements Store over a single shared *gorm.DB handle.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUser(ctx context.Context, facebookID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "facebook_id = ?", facebookID).Error; err != nil {
		return nil, notFound(err, "get user")
	}
	return &user, nil
}

// EnsureUser returns the user, creating a USER-role row on first contact.
func (s *GormStore) EnsureUser(ctx context.Context, facebookID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where(models.User{FacebookID: facebookID}).
		Attrs(models.User{Role: models.RoleUser}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return &user, nil
}

func (s *GormStore) UsersByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("role = ?", role).Order("created_at ASC, facebook_id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list %s users: %w", role, err)
	}
	return users, nil
}

func (s *GormStore) SetRole(ctx context.Context, facebookID, role string) error {
	return s.updateUser(ctx, facebookID, "role", role)
}

func (s *GormStore) SetReporting(ctx context.Context, facebookID string, reportID uint) error {
	return s.updateUser(ctx, facebookID, "is_reporting", reportID)
}

func (s *GormStore) SetPosting(ctx context.Context, facebookID string, postID uint) error {
	return s.updateUser(ctx, facebookID, "is_posting", postID)
}

func (s *GormStore) updateUser(ctx context.Context, facebookID, column string, value any) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("facebook_id = ?", facebookID).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("update user %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update user %s: %w", column, ErrNotFound)
	}
	return nil
}

func (s *GormStore) CreateReport(ctx context.Context, reporterID, reportType string) (*models.Report, error) {
	report := models.Report{ReporterID: reporterID, Type: reportType}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return &report, nil
}

func (s *GormStore) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&report, id).Error
	if err != nil {
		return nil, notFound(err, "get report")
	}
	return &report, nil
}

func (s *GormStore) LatestReport(ctx context.Context, reporterID string) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("id DESC").
		First(&report).Error
	if err != nil {
		return nil, notFound(err, "latest report")
	}
	return &report, nil
}

func (s *GormStore) ListReports(ctx context.Context, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return reports, total, nil
}

func (s *GormStore) InsertMessage(ctx context.Context, reportID uint, text, msgType string) error {
	msg := models.Message{ReportID: reportID, Text: text, Type: msgType}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *GormStore) ReportMessages(ctx context.Context, reportID uint) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.db.WithContext(ctx).Where("report_id = ?", reportID).Order("id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("report messages: %w", err)
	}
	return msgs, nil
}

func (s *GormStore) CreatePost(ctx context.Context, userID string) (*models.Post, error) {
	post := models.Post{UserID: userID}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

func (s *GormStore) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFound(err, "get post")
	}
	return &post, nil
}

func (s *GormStore) SavePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

// LatestPosts returns the newest complete posts.
func (s *GormStore) LatestPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("title IS NOT NULL AND link IS NOT NULL AND description IS NOT NULL AND image_url IS NOT NULL").
		Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("latest posts: %w", err)
	}
	return posts, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
