package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/Yukoval-Dakia/stone/internal/domain"
	"github.com/Yukoval-Dakia/stone/pkg/asseturl"
)

type fakeScientistRepo struct {
	records map[string]*domain.Scientist
}

func newFakeScientistRepo() *fakeScientistRepo {
	return &fakeScientistRepo{records: map[string]*domain.Scientist{}}
}

func (r *fakeScientistRepo) Insert(_ context.Context, s *domain.Scientist) error {
	s.ID = bson.NewObjectID()
	cp := *s
	r.records[s.ID.Hex()] = &cp
	return nil
}

func (r *fakeScientistRepo) FindAll(_ context.Context) ([]domain.Scientist, error) {
	out := []domain.Scientist{}
	for _, s := range r.records {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeScientistRepo) FindByID(_ context.Context, id string) (*domain.Scientist, error) {
	s, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("scientist %q: %w", id, domain.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeScientistRepo) Update(_ context.Context, id string, set bson.M) (*domain.Scientist, error) {
	s, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("scientist %q: %w", id, domain.ErrNotFound)
	}
	for field, v := range set {
		val, _ := v.(string)
		switch field {
		case "name":
			s.Name = val
		case "subject":
			s.Subject = val
		case "title":
			s.Title = val
		case "description":
			s.Description = val
		case "achievements":
			s.Achievements = val
		case "birth_year":
			s.BirthYear = val
		case "death_year":
			s.DeathYear = val
		case "color":
			s.Color = val
		case "image_id":
			s.ImageID = val
		}
	}
	cp := *s
	return &cp, nil
}

func (r *fakeScientistRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("scientist %q: %w", id, domain.ErrNotFound)
	}
	delete(r.records, id)
	return nil
}

type fakeAssetRepo struct {
	uploads    []string
	deletes    []string
	failDelete bool
}

func (r *fakeAssetRepo) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	r.uploads = append(r.uploads, key)
	return nil
}

func (r *fakeAssetRepo) Delete(_ context.Context, key string) error {
	r.deletes = append(r.deletes, key)
	if r.failDelete {
		return fmt.Errorf("asset store unavailable")
	}
	return nil
}

func testImage(t *testing.T) *FileUpload {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	return &FileUpload{Data: buf.Bytes(), Filename: "portrait.png", ContentType: "image/png"}
}

func newTestService(repo *fakeScientistRepo, assets *fakeAssetRepo, seed int64) ScientistService {
	return NewScientistService(
		repo,
		assets,
		asseturl.NewResolver("https://cdn.example.com"),
		rand.New(rand.NewSource(seed)),
		zap.NewNop(),
	)
}

func TestCreateRequiresImage(t *testing.T) {
	svc := newTestService(newFakeScientistRepo(), &fakeAssetRepo{}, 1)

	_, err := svc.Create(context.Background(), CreateScientistInput{Name: "Curie", Subject: "Physics"}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateRequiresNameAndSubject(t *testing.T) {
	svc := newTestService(newFakeScientistRepo(), &fakeAssetRepo{}, 1)

	_, err := svc.Create(context.Background(), CreateScientistInput{Subject: "Physics"}, testImage(t))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(context.Background(), CreateScientistInput{Name: "Curie"}, testImage(t))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateDerivesURLs(t *testing.T) {
	assets := &fakeAssetRepo{}
	svc := newTestService(newFakeScientistRepo(), assets, 1)

	view, err := svc.Create(context.Background(), CreateScientistInput{Name: "Curie", Subject: "Physics"}, testImage(t))
	require.NoError(t, err)

	assert.NotEmpty(t, view.Image)
	assert.NotEmpty(t, view.Thumbnail)
	assert.NotEqual(t, view.Image, view.Thumbnail)
	assert.False(t, strings.HasPrefix(view.ImageID, "http"), "stored identifier must be a key, not a URL")
	require.Len(t, assets.uploads, 1)
	assert.Equal(t, assets.uploads[0], view.ImageID)
}

func TestCreateDefaultColorIsSeeded(t *testing.T) {
	mk := func() string {
		svc := newTestService(newFakeScientistRepo(), &fakeAssetRepo{}, 42)
		view, err := svc.Create(context.Background(), CreateScientistInput{Name: "Curie", Subject: "Physics"}, testImage(t))
		require.NoError(t, err)
		return view.Color
	}

	first, second := mk(), mk()
	assert.Equal(t, first, second, "same seed must pick the same color")
	assert.Contains(t, colorPalette, first)
}

func TestCreateKeepsExplicitColor(t *testing.T) {
	svc := newTestService(newFakeScientistRepo(), &fakeAssetRepo{}, 1)

	view, err := svc.Create(context.Background(),
		CreateScientistInput{Name: "Curie", Subject: "Physics", Color: "#123456"}, testImage(t))
	require.NoError(t, err)
	assert.Equal(t, "#123456", view.Color)
}

func TestUpdatePartialLeavesOtherFields(t *testing.T) {
	repo := newFakeScientistRepo()
	svc := newTestService(repo, &fakeAssetRepo{}, 1)

	created, err := svc.Create(context.Background(),
		CreateScientistInput{Name: "Curie", Subject: "Physics", Title: "Prof."}, testImage(t))
	require.NoError(t, err)

	title := "Dr."
	view, err := svc.Update(context.Background(), created.ID.Hex(),
		domain.ScientistUpdate{Title: &title}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Dr.", view.Title)
	assert.Equal(t, "Curie", view.Name)
	assert.Equal(t, "Physics", view.Subject)
	assert.Equal(t, created.ImageID, view.ImageID)
}

func TestUpdateRejectsEmptyRequiredField(t *testing.T) {
	repo := newFakeScientistRepo()
	svc := newTestService(repo, &fakeAssetRepo{}, 1)

	created, err := svc.Create(context.Background(),
		CreateScientistInput{Name: "Curie", Subject: "Physics"}, testImage(t))
	require.NoError(t, err)

	empty := ""
	_, err = svc.Update(context.Background(), created.ID.Hex(),
		domain.ScientistUpdate{Name: &empty}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateImageReleasesPriorAssetOnce(t *testing.T) {
	repo := newFakeScientistRepo()
	assets := &fakeAssetRepo{}
	svc := newTestService(repo, assets, 1)

	created, err := svc.Create(context.Background(),
		CreateScientistInput{Name: "Curie", Subject: "Physics"}, testImage(t))
	require.NoError(t, err)
	priorKey := created.ImageID

	view, err := svc.Update(context.Background(), created.ID.Hex(),
		domain.ScientistUpdate{}, testImage(t))
	require.NoError(t, err)

	assert.Equal(t, []string{priorKey}, assets.deletes)
	assert.NotEqual(t, priorKey, view.ImageID)
}

func TestUpdateImageProceedsWhenReleaseFails(t *testing.T) {
	repo := newFakeScientistRepo()
	assets := &fakeAssetRepo{failDelete: true}
	svc := newTestService(repo, assets, 1)

	created, err := svc.Create(context.Background(),
		CreateScientistInput{Name: "Curie", Subject: "Physics"}, testImage(t))
	require.NoError(t, err)

	view, err := svc.Update(context.Background(), created.ID.Hex(),
		domain.ScientistUpdate{}, testImage(t))
	require.NoError(t, err)
	assert.NotEqual(t, created.ImageID, view.ImageID)
	assert.Len(t, assets.deletes, 1)
}

func TestDeleteReleasesAssetThenRemovesRecord(t *testing.T) {
	repo := newFakeScientistRepo()
	assets := &fakeAssetRepo{}
	svc := newTestService(repo, assets, 1)

	created, err := svc.Create(context.Background(),
		CreateScientistInput{Name: "Curie", Subject: "Physics"}, testImage(t))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID.Hex()))
	assert.Equal(t, []string{created.ImageID}, assets.deletes)

	_, err = svc.Get(context.Background(), created.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteProceedsWhenReleaseFails(t *testing.T) {
	repo := newFakeScientistRepo()
	assets := &fakeAssetRepo{failDelete: true}
	svc := newTestService(repo, assets, 1)

	created, err := svc.Create(context.Background(),
		CreateScientistInput{Name: "Curie", Subject: "Physics"}, testImage(t))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID.Hex()))
	_, err = svc.Get(context.Background(), created.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteMissingRecord(t *testing.T) {
	svc := newTestService(newFakeScientistRepo(), &fakeAssetRepo{}, 1)
	err := svc.Delete(context.Background(), bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListEmptyStore(t *testing.T) {
	svc := newTestService(newFakeScientistRepo(), &fakeAssetRepo{}, 1)
	views, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, views)
}
