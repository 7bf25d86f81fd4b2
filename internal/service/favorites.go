package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pageza/foodtracking/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrFavoriteNotFound = errors.New("favorite not found")

// GormFavoriteRepository stores favorites with gorm.
type GormFavoriteRepository struct {
	db *gorm.DB
}

// Ensure GormFavoriteRepository implements FavoriteRepository
var _ FavoriteRepository = (*GormFavoriteRepository)(nil)

// NewGormFavoriteRepository creates a new GormFavoriteRepository instance
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// Exists reports whether a favorite with exactly this name is stored.
func (r *GormFavoriteRepository) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.FavoriteFood{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Get retrieves a favorite by name
func (r *GormFavoriteRepository) Get(ctx context.Context, name string) (*model.FavoriteFood, error) {
	var fav model.FavoriteFood
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&fav).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}
	return &fav, nil
}

// Upsert inserts a favorite, replacing any existing one with the same name.
func (r *GormFavoriteRepository) Upsert(ctx context.Context, favorite *model.FavoriteFood) error {
	favorite.ID = 0
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"emoji", "calories", "fats", "proteins", "carbs", "weight_grams", "updated_at"}),
	}).Create(favorite).Error
}

// DeleteByName removes a favorite by name
func (r *GormFavoriteRepository) DeleteByName(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Where("name = ?", name).Delete(&model.FavoriteFood{}).Error
}

// List returns all favorites ordered by name
func (r *GormFavoriteRepository) List(ctx context.Context) ([]model.FavoriteFood, error) {
	var favorites []model.FavoriteFood
	err := r.db.WithContext(ctx).Order("name ASC").Find(&favorites).Error
	return favorites, err
}

// FavoriteService tracks which food names are favorited.
type FavoriteService struct {
	favorites FavoriteRepository
	entries   EntryRepository
	now       func() time.Time
}

// Ensure FavoriteService implements IFavoriteService
var _ IFavoriteService = (*FavoriteService)(nil)

// NewFavoriteService creates a new FavoriteService instance
func NewFavoriteService(favorites FavoriteRepository, entries EntryRepository) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		entries:   entries,
		now:       time.Now,
	}
}

// IsFavorite matches the name exactly, case included.
func (s *FavoriteService) IsFavorite(ctx context.Context, name string) (bool, error) {
	return s.favorites.Exists(ctx, name)
}

// Toggle removes the favorite named like entry, or snapshots entry as a new
// favorite. It returns whether the name is a favorite afterwards.
func (s *FavoriteService) Toggle(ctx context.Context, entry model.FoodEntry) (bool, error) {
	exists, err := s.favorites.Exists(ctx, entry.Name)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	if exists {
		if err := s.favorites.DeleteByName(ctx, entry.Name); err != nil {
			return true, fmt.Errorf("remove favorite: %w", err)
		}
		return false, nil
	}
	fav := model.FavoriteFromEntry(entry)
	if err := s.favorites.Upsert(ctx, &fav); err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	return true, nil
}

// ToggleEntry toggles the favorite state of a stored entry.
func (s *FavoriteService) ToggleEntry(ctx context.Context, entryID uint) (bool, error) {
	entry, err := s.entries.Get(ctx, entryID)
	if err != nil {
		return false, err
	}
	return s.Toggle(ctx, *entry)
}

// Remove deletes a favorite and returns the snapshot needed to undo it.
func (s *FavoriteService) Remove(ctx context.Context, name string) (*model.FavoriteFood, error) {
	fav, err := s.favorites.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.favorites.DeleteByName(ctx, name); err != nil {
		return nil, fmt.Errorf("remove favorite: %w", err)
	}
	return fav, nil
}

// Restore re-inserts a removed snapshot, replacing a favorite that has
// since taken the same name.
func (s *FavoriteService) Restore(ctx context.Context, snapshot model.FavoriteFood) error {
	if snapshot.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	return s.favorites.Upsert(ctx, &snapshot)
}

// List returns all favorites ordered by name
func (s *FavoriteService) List(ctx context.Context) ([]model.FavoriteFood, error) {
	return s.favorites.List(ctx)
}

// Log creates a diary entry for date from the named favorite.
func (s *FavoriteService) Log(ctx context.Context, name string, date model.Date) (*model.FoodEntry, error) {
	fav, err := s.favorites.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	entry := fav.ToEntry(date, s.now())
	if _, err := s.entries.Insert(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
