package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/poqie/linkguard/internal/model"
	"github.com/poqie/linkguard/internal/store"
)

// ErrSlugTaken возвращается условным созданием, когда slug уже занят.
// Вызывающая сторона повторяет попытку со свежим slug.
var ErrSlugTaken = errors.New("slug already taken")

// LinkRepositoryInterface определяет типизированные операции над записями
// ссылок и пользовательским индексом в хранилище документов.
type LinkRepositoryInterface interface {
	Exists(ctx context.Context, slug string) (bool, error)
	Get(ctx context.Context, slug string) (*model.LinkRecord, error)
	Create(ctx context.Context, record *model.LinkRecord) error
	IncrementClicks(ctx context.Context, slug string) (int64, error)
	Deactivate(ctx context.Context, slug string) error
	Remove(ctx context.Context, slug string) error
	OwnerSlugs(ctx context.Context, ownerID string) ([]string, error)
}

// LinkRepository реализует LinkRepositoryInterface поверх store.Document.
type LinkRepository struct {
	Store store.Document
}

// NewLinkRepository создаёт новый экземпляр LinkRepository.
func NewLinkRepository(st store.Document) *LinkRepository {
	return &LinkRepository{Store: st}
}

func linkPath(slug string) string {
	return "links/" + slug
}

func indexPath(ownerID, slug string) string {
	return "users/" + ownerID + "/links/" + slug
}

// Exists проверяет занятость slug. Не заменяет условное создание: между
// проверкой и записью slug может занять конкурентный писатель.
func (r *LinkRepository) Exists(ctx context.Context, slug string) (bool, error) {
	return r.Store.Exists(ctx, linkPath(slug))
}

// Get возвращает запись по slug либо nil, если записи нет или она
// деактивирована мягким удалением.
func (r *LinkRepository) Get(ctx context.Context, slug string) (*model.LinkRecord, error) {
	raw, ok, err := r.Store.Read(ctx, linkPath(slug))
	if err != nil {
		return nil, fmt.Errorf("failed to read link %q: %w", slug, err)
	}
	if !ok {
		return nil, nil
	}

	record := &model.LinkRecord{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("failed to decode link %q: %w", slug, err)
	}
	if !record.IsActive {
		return nil, nil
	}
	return record, nil
}

// Create условно записывает LinkRecord и заводит запись в индексе владельца.
// При занятом slug возвращает ErrSlugTaken, ничего не перезаписывая.
func (r *LinkRepository) Create(ctx context.Context, record *model.LinkRecord) error {
	created, err := r.Store.CreateIfAbsent(ctx, linkPath(record.Slug), record)
	if err != nil {
		return fmt.Errorf("failed to create link %q: %w", record.Slug, err)
	}
	if !created {
		return ErrSlugTaken
	}

	entry := model.UserIndexEntry{CreatedAt: record.CreatedAt, IsActive: record.IsActive}
	if err := r.Store.Write(ctx, indexPath(record.OwnerID, record.Slug), entry); err != nil {
		// Откатываем запись, иначе она останется сиротой: невидимой в списке
		// владельца и недоступной для удаления. Откат best-effort — если и он
		// не прошёл, запись-сирота остаётся до ручной чистки.
		_ = r.Store.Remove(ctx, linkPath(record.Slug))
		return fmt.Errorf("failed to index link %q: %w", record.Slug, err)
	}
	return nil
}

// IncrementClicks атомарно увеличивает счётчик переходов и возвращает новое
// значение. Единственная мутация записи после создания.
func (r *LinkRepository) IncrementClicks(ctx context.Context, slug string) (int64, error) {
	count, err := r.Store.IncrementField(ctx, linkPath(slug), "clickCount", 1)
	if err != nil {
		return 0, fmt.Errorf("failed to increment clicks for %q: %w", slug, err)
	}
	return count, nil
}

// Deactivate помечает ссылку и её запись в индексе как неактивные (мягкое
// удаление): запись остаётся, но для резолва неотличима от отсутствующей.
func (r *LinkRepository) Deactivate(ctx context.Context, slug string) error {
	record, err := r.Get(ctx, slug)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	fields := map[string]any{"isActive": false}
	if err := r.Store.Update(ctx, linkPath(slug), fields); err != nil {
		return fmt.Errorf("failed to deactivate link %q: %w", slug, err)
	}
	if err := r.Store.Update(ctx, indexPath(record.OwnerID, slug), fields); err != nil {
		return fmt.Errorf("failed to deactivate index for %q: %w", slug, err)
	}
	return nil
}

// Remove удаляет запись ссылки вместе с записью индекса владельца.
func (r *LinkRepository) Remove(ctx context.Context, slug string) error {
	record, err := r.Get(ctx, slug)
	if err != nil {
		return err
	}

	if err := r.Store.Remove(ctx, linkPath(slug)); err != nil {
		return fmt.Errorf("failed to remove link %q: %w", slug, err)
	}
	if record != nil {
		if err := r.Store.Remove(ctx, indexPath(record.OwnerID, slug)); err != nil {
			return fmt.Errorf("failed to remove index for %q: %w", slug, err)
		}
	}
	return nil
}

// OwnerSlugs возвращает все slug владельца по индексу users/{ownerId}/links.
func (r *LinkRepository) OwnerSlugs(ctx context.Context, ownerID string) ([]string, error) {
	entries, err := r.Store.List(ctx, "users/"+ownerID+"/links")
	if err != nil {
		return nil, fmt.Errorf("failed to list links for user %q: %w", ownerID, err)
	}

	slugs := make([]string, 0, len(entries))
	for slug := range entries {
		slugs = append(slugs, slug)
	}
	return slugs, nil
}
