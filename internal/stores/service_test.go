package stores

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/angelmondragon/giftstore-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
)

type stubStoreRepo struct {
	stores    []Store
	createErr error
	listErr   error
	created   *CreateStoreDTO
}

func (s *stubStoreRepo) List(ctx context.Context) ([]Store, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]Store(nil), s.stores...), nil
}

func (s *stubStoreRepo) FindByID(ctx context.Context, id string) (*Store, error) {
	for i := range s.stores {
		if s.stores[i].ID == id {
			store := s.stores[i]
			return &store, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubStoreRepo) Create(ctx context.Context, dto CreateStoreDTO) (*Store, error) {
	s.created = &dto
	if s.createErr != nil {
		return nil, s.createErr
	}
	store := dto.ToModel()
	store.ID = "st_001"
	s.stores = append(s.stores, store)
	return &store, nil
}

func (s *stubStoreRepo) Update(ctx context.Context, id string, mutate func(*Store) error) (*Store, error) {
	for i := range s.stores {
		if s.stores[i].ID != id {
			continue
		}
		if err := mutate(&s.stores[i]); err != nil {
			return nil, err
		}
		store := s.stores[i]
		return &store, nil
	}
	return nil, ErrNotFound
}

type stubUploader struct {
	saved   []string
	removed []string
	failOn  string
}

func (u *stubUploader) SaveAll(ctx context.Context, field string, files []*multipart.FileHeader) ([]string, error) {
	if field == u.failOn {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be an image")
	}
	names := make([]string, 0, len(files))
	for range files {
		name := field + "-1700000000000.png"
		names = append(names, name)
		u.saved = append(u.saved, name)
	}
	return names, nil
}

func (u *stubUploader) Remove(ctx context.Context, names ...string) error {
	for _, n := range names {
		if n != "" {
			u.removed = append(u.removed, n)
		}
	}
	return nil
}

func baseStore() Store {
	return Store{
		ID:          "st_001",
		StoreName:   "Acme",
		Location:    "Colombo",
		Email:       "a@x.com",
		Password:    "pw",
		TP:          "0770000000",
		Status:      enums.StoreStatusActive,
		Description: "Gift hampers",
	}
}

func newTestService(t *testing.T, repo *stubStoreRepo, assets *stubUploader) Service {
	t.Helper()
	svc, err := NewService(repo, assets, logger.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, &stubUploader{}, logger.Nop()); err == nil {
		t.Fatal("expected error creating service without repo")
	}
	if _, err := NewService(&stubStoreRepo{}, nil, logger.Nop()); err == nil {
		t.Fatal("expected error creating service without asset storage")
	}
	if _, err := NewService(&stubStoreRepo{}, &stubUploader{}, nil); err == nil {
		t.Fatal("expected error creating service without logger")
	}
}

func TestCreateDefaultsStatusToActive(t *testing.T) {
	repo := &stubStoreRepo{}
	svc := newTestService(t, repo, &stubUploader{})

	dto, err := svc.Create(context.Background(), CreateStoreInput{
		StoreName: "Acme",
		Location:  "Colombo",
		Email:     "a@x.com",
		Password:  "pw",
		TP:        "0770000000",
	})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if dto.ID != "st_001" {
		t.Fatalf("expected st_001 got %s", dto.ID)
	}
	if dto.Status != enums.StoreStatusActive {
		t.Fatalf("expected active status got %s", dto.Status)
	}
	if dto.Propic != "" || dto.BackgroundImage != "" {
		t.Fatalf("expected empty image names, got %+v", dto)
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	repo := &stubStoreRepo{}
	svc := newTestService(t, repo, &stubUploader{})

	_, err := svc.Create(context.Background(), CreateStoreInput{StoreName: "Acme", Status: "closed"})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("record must not be written")
	}
}

func TestCreateStoresUploadedImageNames(t *testing.T) {
	repo := &stubStoreRepo{}
	assets := &stubUploader{}
	svc := newTestService(t, repo, assets)

	dto, err := svc.Create(context.Background(), CreateStoreInput{
		StoreName:       "Acme",
		Propic:          &multipart.FileHeader{Filename: "me.png"},
		BackgroundImage: &multipart.FileHeader{Filename: "bg.png"},
	})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if dto.Propic != "propic-1700000000000.png" {
		t.Fatalf("unexpected propic %q", dto.Propic)
	}
	if dto.BackgroundImage != "backgroundImage-1700000000000.png" {
		t.Fatalf("unexpected background %q", dto.BackgroundImage)
	}
}

func TestCreateRollsBackUploadsWhenWriteFails(t *testing.T) {
	repo := &stubStoreRepo{createErr: errors.New("disk full")}
	assets := &stubUploader{}
	svc := newTestService(t, repo, assets)

	_, err := svc.Create(context.Background(), CreateStoreInput{
		StoreName: "Acme",
		Propic:    &multipart.FileHeader{Filename: "me.png"},
	})
	if !pkgerrors.Is(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(assets.removed) != 1 || assets.removed[0] != "propic-1700000000000.png" {
		t.Fatalf("expected uploaded propic to be removed, got %v", assets.removed)
	}
}

func TestCreateRollsBackPropicWhenBackgroundRejected(t *testing.T) {
	repo := &stubStoreRepo{}
	assets := &stubUploader{failOn: fieldBackgroundImage}
	svc := newTestService(t, repo, assets)

	_, err := svc.Create(context.Background(), CreateStoreInput{
		StoreName:       "Acme",
		Propic:          &multipart.FileHeader{Filename: "me.png"},
		BackgroundImage: &multipart.FileHeader{Filename: "bg.txt"},
	})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(assets.removed) != 1 {
		t.Fatalf("expected propic rollback, got %v", assets.removed)
	}
	if repo.created != nil {
		t.Fatal("record must not be written")
	}
}

func TestListOmitsPasswords(t *testing.T) {
	repo := &stubStoreRepo{stores: []Store{baseStore()}}
	svc := newTestService(t, repo, &stubUploader{})

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if len(list) != 1 || list[0].Email != "a@x.com" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{}, &stubUploader{})
	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if list == nil {
		t.Fatal("expected empty slice")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{}, &stubUploader{})
	_, err := svc.GetByID(context.Background(), "st_404")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound || typed.Message() != "Store not found" {
		t.Fatalf("expected store not found, got %v", err)
	}
}

func TestChangeStatusUpdatesOnlyTarget(t *testing.T) {
	other := baseStore()
	other.ID = "st_002"
	repo := &stubStoreRepo{stores: []Store{baseStore(), other}}
	svc := newTestService(t, repo, &stubUploader{})

	dto, err := svc.ChangeStatus(context.Background(), "st_001", "Suspended")
	if err != nil {
		t.Fatalf("change status: %v", err)
	}
	if dto.Status != enums.StoreStatusSuspended {
		t.Fatalf("expected suspended got %s", dto.Status)
	}
	if repo.stores[1].Status != enums.StoreStatusActive {
		t.Fatalf("other store changed to %s", repo.stores[1].Status)
	}
}

func TestChangeStatusValidation(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{stores: []Store{baseStore()}}, &stubUploader{})

	cases := []struct {
		name   string
		id     string
		status string
		code   pkgerrors.Code
	}{
		{name: "missing id", id: "", status: "active", code: pkgerrors.CodeValidation},
		{name: "missing status", id: "st_001", status: " ", code: pkgerrors.CodeValidation},
		{name: "unknown status", id: "st_001", status: "closed", code: pkgerrors.CodeValidation},
		{name: "unknown store", id: "st_009", status: "inactive", code: pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ChangeStatus(context.Background(), tc.id, tc.status)
			if !pkgerrors.Is(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestUpdateDetailsKeepsUntouchedFields(t *testing.T) {
	repo := &stubStoreRepo{stores: []Store{baseStore()}}
	svc := newTestService(t, repo, &stubUploader{})

	dto, err := svc.UpdateDetails(context.Background(), UpdateStoreInput{StoreID: "st_001", StoreName: "New", Email: ""})
	if err != nil {
		t.Fatalf("update store: %v", err)
	}
	want := baseStore()
	if dto.StoreName != "New" {
		t.Fatalf("expected new name got %s", dto.StoreName)
	}
	if dto.Email != want.Email || dto.Location != want.Location || dto.TP != want.TP || dto.Description != want.Description {
		t.Fatalf("untouched fields changed: %+v", dto)
	}
	if repo.stores[0].Password != want.Password {
		t.Fatal("password must not change")
	}
}

func TestUpdateDetailsRequiresID(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{}, &stubUploader{})
	_, err := svc.UpdateDetails(context.Background(), UpdateStoreInput{StoreName: "New"})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := &stubStoreRepo{stores: []Store{baseStore()}}
	svc := newTestService(t, repo, &stubUploader{})

	dto, err := svc.Login(context.Background(), " A@X.com ", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if dto.ID != "st_001" {
		t.Fatalf("expected st_001 got %s", dto.ID)
	}

	_, err = svc.Login(context.Background(), "a@x.com", "wrong")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized || typed.Message() != "Invalid email or password" {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
