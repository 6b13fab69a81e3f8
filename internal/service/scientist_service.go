package service

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/Yukoval-Dakia/stone/internal/domain"
	"github.com/Yukoval-Dakia/stone/internal/repository"
	"github.com/Yukoval-Dakia/stone/pkg/asseturl"
	"github.com/Yukoval-Dakia/stone/pkg/utils"
)

// colorPalette is the fixed set a new scientist's card color is drawn from
// when the caller supplies none.
var colorPalette = []string{
	"#e17055", "#00b894", "#0984e3", "#6c5ce7",
	"#fdcb6e", "#d63031", "#00cec9", "#e84393",
}

// FileUpload is an image received from a multipart request, already size and
// extension checked by the handler.
type FileUpload struct {
	Data        []byte
	Filename    string
	ContentType string
}

type CreateScientistInput struct {
	Name         string
	Subject      string
	Title        string
	Description  string
	Achievements string
	BirthYear    string
	DeathYear    string
	Color        string
}

type ScientistService interface {
	Create(ctx context.Context, input CreateScientistInput, upload *FileUpload) (*domain.ScientistView, error)
	List(ctx context.Context) ([]domain.ScientistView, error)
	Get(ctx context.Context, id string) (*domain.ScientistView, error)
	Update(ctx context.Context, id string, upd domain.ScientistUpdate, upload *FileUpload) (*domain.ScientistView, error)
	Delete(ctx context.Context, id string) error
}

type scientistService struct {
	repo     repository.ScientistRepository
	assets   repository.AssetRepository
	resolver *asseturl.Resolver
	proc     *utils.ImageProcessor
	log      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewScientistService wires the record lifecycle. rng decides default card
// colors and is injected so tests can seed it.
func NewScientistService(
	repo repository.ScientistRepository,
	assets repository.AssetRepository,
	resolver *asseturl.Resolver,
	rng *rand.Rand,
	log *zap.Logger,
) ScientistService {
	return &scientistService{
		repo:     repo,
		assets:   assets,
		resolver: resolver,
		proc:     utils.NewImageProcessor(log),
		rng:      rng,
		log:      log,
	}
}

func (s *scientistService) Create(ctx context.Context, input CreateScientistInput, upload *FileUpload) (*domain.ScientistView, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, fmt.Errorf("subject is required: %w", domain.ErrValidation)
	}
	if upload == nil {
		return nil, fmt.Errorf("image is required: %w", domain.ErrValidation)
	}

	key, err := s.storeImage(ctx, upload)
	if err != nil {
		return nil, err
	}

	color := input.Color
	if color == "" {
		color = s.pickColor()
	}

	sc := &domain.Scientist{
		Name:         input.Name,
		Subject:      input.Subject,
		Title:        input.Title,
		Description:  input.Description,
		Achievements: input.Achievements,
		BirthYear:    input.BirthYear,
		DeathYear:    input.DeathYear,
		Color:        color,
		ImageID:      key,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, sc); err != nil {
		return nil, err
	}
	return s.view(sc), nil
}

func (s *scientistService) List(ctx context.Context) ([]domain.ScientistView, error) {
	scientists, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.ScientistView, 0, len(scientists))
	for i := range scientists {
		views = append(views, *s.view(&scientists[i]))
	}
	return views, nil
}

func (s *scientistService) Get(ctx context.Context, id string) (*domain.ScientistView, error) {
	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sc), nil
}

func (s *scientistService) Update(ctx context.Context, id string, upd domain.ScientistUpdate, upload *FileUpload) (*domain.ScientistView, error) {
	set := bson.M{}
	for field, v := range map[string]*string{
		"name":         upd.Name,
		"subject":      upd.Subject,
		"title":        upd.Title,
		"description":  upd.Description,
		"achievements": upd.Achievements,
		"birth_year":   upd.BirthYear,
		"death_year":   upd.DeathYear,
		"color":        upd.Color,
	} {
		if v == nil {
			continue
		}
		if (field == "name" || field == "subject") && strings.TrimSpace(*v) == "" {
			return nil, fmt.Errorf("%s cannot be empty: %w", field, domain.ErrValidation)
		}
		set[field] = *v
	}

	if upload != nil {
		prior, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		key, err := s.storeImage(ctx, upload)
		if err != nil {
			return nil, err
		}
		// Release the replaced asset before the new key is stored. Failure
		// leaks the old object but never blocks the update.
		if prior.ImageID != "" {
			if err := s.assets.Delete(ctx, prior.ImageID); err != nil {
				s.log.Warn("Failed to release replaced image",
					zap.String("id", id),
					zap.String("image_id", prior.ImageID),
					zap.Error(err))
			}
		}
		set["image_id"] = key
	}

	if len(set) == 0 {
		return s.Get(ctx, id)
	}
	sc, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}
	return s.view(sc), nil
}

func (s *scientistService) Delete(ctx context.Context, id string) error {
	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	// Best-effort release first, record removal second.
	if sc.ImageID != "" {
		if err := s.assets.Delete(ctx, sc.ImageID); err != nil {
			s.log.Warn("Failed to release image on delete",
				zap.String("id", id),
				zap.String("image_id", sc.ImageID),
				zap.Error(err))
		}
	}
	return s.repo.Delete(ctx, id)
}

// storeImage bounds the upload and writes it to the asset store under a
// fresh opaque key.
func (s *scientistService) storeImage(ctx context.Context, upload *FileUpload) (string, error) {
	data, err := s.proc.Bound(upload.Data, upload.ContentType)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	key := "scientists/" + uuid.New().String() + strings.ToLower(filepath.Ext(upload.Filename))
	if err := s.assets.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), upload.ContentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

func (s *scientistService) pickColor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return colorPalette[s.rng.Intn(len(colorPalette))]
}

func (s *scientistService) view(sc *domain.Scientist) *domain.ScientistView {
	return &domain.ScientistView{
		Scientist: *sc,
		Image:     s.resolver.URL(sc.ImageID),
		Thumbnail: s.resolver.ThumbnailURL(sc.ImageID),
	}
}
