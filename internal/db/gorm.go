package db

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

type (
	GormForkedModel struct {
		ID        string `gorm:"primarykey;size:36"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Username string `gorm:"uniqueIndex;size:30;not null"`
		Password string `gorm:"not null"`
	}

	Document struct {
		GormForkedModel
		UserID      string `gorm:"index;size:36;not null"`
		Type        string `gorm:"not null"`
		Link        string `gorm:"not null"`
		Title       string `gorm:"size:64;not null"`
		Description *string
		Sharable    bool          `gorm:"not null"`
		SharableID  *string       `gorm:"uniqueIndex;size:36"`
		Tags        []DocumentTag `gorm:"foreignKey:DocumentID"`
	}

	DocumentTag struct {
		DocumentID string `gorm:"primaryKey;size:36"`
		Name       string `gorm:"primaryKey;size:32;index"`
		Position   int    `gorm:"not null"`
	}

	Profile struct {
		GormForkedModel
		UserID        string `gorm:"uniqueIndex;size:36;not null"`
		Username      string `gorm:"index;size:30;not null"`
		Profession    *string
		Avatar        *string
		XLink         *string
		InstagramLink *string
		Whatsapp      *string
		MediumLink    *string
		Bio           *string
		PublicProfile bool `gorm:"not null"`
	}

	// GormStore is the relational Store, used with postgres in deployments
	// without MongoDB and with sqlite in tests.
	GormStore struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}
)

func (m *GormForkedModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func NewGormClient(cfg *config.Config, l *zap.SugaredLogger) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}
	newLogger := logger.New(zap.NewStdLog(l.Desugar()), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, errors.Errorf("store driver %q is not relational", cfg.StoreDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if cfg.StoreDriver == config.DriverSQLite {
		// sqlite has a single writer, and ":memory:" is private to a connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "get sql db")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func NewGormStore(db *gorm.DB, l *zap.SugaredLogger) (*GormStore, error) {
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, errors.Wrap(err, "migrate document")
	}
	if err := db.AutoMigrate(&DocumentTag{}); err != nil {
		return nil, errors.Wrap(err, "migrate document tag")
	}
	if err := db.AutoMigrate(&Profile{}); err != nil {
		return nil, errors.Wrap(err, "migrate profile")
	}
	return &GormStore{db: db, logger: l}, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	row := User{
		GormForkedModel: GormForkedModel{ID: user.ID},
		Username:        user.Username,
		Password:        user.PasswordHash,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "create user")
	}
	*user = row.toModel()
	return nil
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *GormStore) findUser(ctx context.Context, query string, arg string) (*models.User, error) {
	row := User{}
	if err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		return nil, notFound(err, "find user")
	}
	u := row.toModel()
	return &u, nil
}

func (s *GormStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	row := Document{
		GormForkedModel: GormForkedModel{ID: doc.ID, CreatedAt: doc.CreatedAt},
		UserID:          doc.OwnerID,
		Type:            string(doc.Type),
		Link:            doc.Link,
		Title:           doc.Title,
		Description:     doc.Description,
		Tags:            tagRows("", doc.Tags),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Wrap(err, "create document")
	}
	*doc = row.toModel()
	return nil
}

func (s *GormStore) ListDocuments(ctx context.Context, ownerID string, filter models.DocumentFilter) ([]models.Document, error) {
	w := squirrel.And{squirrel.Eq{"d.user_id": ownerID}}
	if filter.SharableOnly {
		w = append(w, squirrel.Eq{"d.sharable": true})
	}
	if filter.Tag != "" {
		w = append(w, squirrel.Expr(
			"EXISTS (SELECT 1 FROM document_tags t WHERE t.document_id = d.id AND t.name = ?)", filter.Tag))
	}
	sql, args, err := squirrel.
		Select("d.id").From("documents d").
		Where(w).
		OrderBy("d.created_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	ids := make([]string, 0)
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&ids).Error; err != nil {
		return nil, errors.Wrap(err, "scan document ids")
	}
	if len(ids) == 0 {
		return []models.Document{}, nil
	}

	rows := make([]Document, 0, len(ids))
	res := preloadTags(s.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&rows)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "load documents")
	}

	docs := make([]models.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].toModel()
	}
	return docs, nil
}

func (s *GormStore) FindDocument(ctx context.Context, ownerID, id string) (*models.Document, error) {
	row, err := findOwnedDocument(s.db.WithContext(ctx), ownerID, id)
	if err != nil {
		return nil, err
	}
	doc := row.toModel()
	return &doc, nil
}

func (s *GormStore) UpdateDocument(ctx context.Context, ownerID, id string, patch models.DocumentPatch) (*models.Document, error) {
	var row *Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findOwnedDocument(tx, ownerID, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			row = existing
			return nil
		}

		updates := map[string]interface{}{"updated_at": time.Now()}
		if patch.Type != nil {
			updates["type"] = string(*patch.Type)
		}
		if patch.Link != nil {
			updates["link"] = *patch.Link
		}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if err := tx.Model(&Document{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update document")
		}

		if patch.Tags != nil {
			if err := tx.Where("document_id = ?", existing.ID).Delete(&DocumentTag{}).Error; err != nil {
				return errors.Wrap(err, "clear tags")
			}
			if tags := tagRows(existing.ID, patch.Tags); len(tags) > 0 {
				if err := tx.Create(&tags).Error; err != nil {
					return errors.Wrap(err, "insert tags")
				}
			}
		}

		row, err = findOwnedDocument(tx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	doc := row.toModel()
	return &doc, nil
}

func (s *GormStore) DeleteDocument(ctx context.Context, ownerID, id string) (*models.Document, error) {
	var row *Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = findOwnedDocument(tx, ownerID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", row.ID).Delete(&DocumentTag{}).Error; err != nil {
			return errors.Wrap(err, "delete tags")
		}
		if err := tx.Delete(&Document{}, "id = ?", row.ID).Error; err != nil {
			return errors.Wrap(err, "delete document")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	doc := row.toModel()
	return &doc, nil
}

func (s *GormStore) ShareDocument(ctx context.Context, ownerID, id, sharableID string) (*models.Document, error) {
	var row *Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the sharable = false guard makes a second share a no-op
		res := tx.Model(&Document{}).
			Where("id = ? AND user_id = ? AND sharable = ?", id, ownerID, false).
			Updates(map[string]interface{}{
				"sharable":    true,
				"sharable_id": sharableID,
				"updated_at":  time.Now(),
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "share document")
		}
		var err error
		row, err = findOwnedDocument(tx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	doc := row.toModel()
	return &doc, nil
}

func (s *GormStore) UnshareDocument(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).Model(&Document{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"sharable":    false,
			"sharable_id": nil,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "unshare document")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) FindSharedDocument(ctx context.Context, sharableID string) (*models.Document, error) {
	row := Document{}
	err := preloadTags(s.db.WithContext(ctx)).
		Where("sharable_id = ? AND sharable = ?", sharableID, true).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, "find shared document")
	}
	doc := row.toModel()
	return &doc, nil
}

// UpsertProfile creates or updates the owner's profile. Two first sign-ins can
// both miss the row; the loser's insert hits the user_id unique index and is
// retried once, which then finds the winner's row.
func (s *GormStore) UpsertProfile(ctx context.Context, ownerID, username string, patch models.ProfilePatch) (*models.Profile, error) {
	row, err := s.upsertProfile(ctx, ownerID, username, patch)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.logger.Debugw("profile insert raced, retrying", "userId", ownerID)
		row, err = s.upsertProfile(ctx, ownerID, username, patch)
	}
	if err != nil {
		return nil, err
	}
	p := row.toModel()
	return &p, nil
}

func (s *GormStore) upsertProfile(ctx context.Context, ownerID, username string, patch models.ProfilePatch) (Profile, error) {
	row := Profile{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", ownerID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = Profile{UserID: ownerID, Username: username}
			applyProfilePatch(&row, patch)
			return errors.Wrap(tx.Create(&row).Error, "create profile")
		}
		if err != nil {
			return errors.Wrap(err, "find profile")
		}

		row.Username = username
		applyProfilePatch(&row, patch)
		return errors.Wrap(tx.Save(&row).Error, "save profile")
	})
	return row, err
}

func (s *GormStore) FindProfile(ctx context.Context, ownerID string) (*models.Profile, error) {
	return s.findProfile(ctx, "user_id = ?", ownerID)
}

func (s *GormStore) FindPublicProfile(ctx context.Context, username string) (*models.Profile, error) {
	return s.findProfile(ctx, "username = ? AND public_profile = ?", username, true)
}

func (s *GormStore) findProfile(ctx context.Context, query string, args ...interface{}) (*models.Profile, error) {
	row := Profile{}
	if err := s.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		return nil, notFound(err, "find profile")
	}
	p := row.toModel()
	return &p, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	return sqlDB.Close()
}

////////

func preloadTags(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func findOwnedDocument(tx *gorm.DB, ownerID, id string) (*Document, error) {
	row := Document{}
	err := preloadTags(tx).Where("id = ? AND user_id = ?", id, ownerID).First(&row).Error
	if err != nil {
		return nil, notFound(err, "find document")
	}
	return &row, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, op)
}

func tagRows(documentID string, tags []string) []DocumentTag {
	rows := make([]DocumentTag, len(tags))
	for i, name := range tags {
		rows[i] = DocumentTag{DocumentID: documentID, Name: name, Position: i}
	}
	return rows
}

func applyProfilePatch(row *Profile, patch models.ProfilePatch) {
	if patch.Profession != nil {
		row.Profession = patch.Profession
	}
	if patch.Avatar != nil {
		row.Avatar = patch.Avatar
	}
	if patch.SocialLinks != nil {
		row.XLink = patch.SocialLinks.X
		row.InstagramLink = patch.SocialLinks.Instagram
		row.Whatsapp = patch.SocialLinks.Whatsapp
		row.MediumLink = patch.SocialLinks.Medium
	}
	if patch.Bio != nil {
		row.Bio = patch.Bio
	}
	if patch.PublicProfile != nil {
		row.PublicProfile = *patch.PublicProfile
	}
}

func (u User) toModel() models.User {
	return models.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.Password,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d Document) toModel() models.Document {
	tags := make([]string, len(d.Tags))
	for i := range d.Tags {
		tags[i] = d.Tags[i].Name
	}
	return models.Document{
		ID:          d.ID,
		OwnerID:     d.UserID,
		Type:        models.DocumentType(d.Type),
		Link:        d.Link,
		Title:       d.Title,
		Description: d.Description,
		Tags:        tags,
		Sharable:    d.Sharable,
		SharableID:  d.SharableID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (p Profile) toModel() models.Profile {
	return models.Profile{
		ID:         p.ID,
		OwnerID:    p.UserID,
		Username:   p.Username,
		Profession: p.Profession,
		Avatar:     p.Avatar,
		SocialLinks: models.SocialLinks{
			X:         p.XLink,
			Instagram: p.InstagramLink,
			Whatsapp:  p.Whatsapp,
			Medium:    p.MediumLink,
		},
		Bio:           p.Bio,
		PublicProfile: p.PublicProfile,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
