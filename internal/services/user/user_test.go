package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/auth-service/internal/events"
	"github.com/magabrotheeeer/auth-service/internal/models"
	"github.com/magabrotheeeer/auth-service/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) SaveUser(ctx context.Context, user models.User) (int, error) {
	args := m.Called(ctx, user)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *RepoMock) UpdateUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) DeleteUser(ctx context.Context, id int) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(event events.UserEvent) error {
	return m.Called(event).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validUser() models.User {
	return models.User{
		ID:        1,
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
		Username:  "ivan",
		Password:  "secret123",
		Role:      models.RoleUser,
	}
}

func TestService_ValidateFields(t *testing.T) {
	svc := New(nil, nil, nil, newNoopLogger())

	tests := []struct {
		name string
		user func() *models.User
		want bool
	}{
		{"valid user", func() *models.User { u := validUser(); return &u }, true},
		{"valid admin", func() *models.User {
			u := validUser()
			u.Role = models.RoleAdmin
			return &u
		}, true},
		{"nil user", func() *models.User { return nil }, false},
		{"empty first name", func() *models.User {
			u := validUser()
			u.FirstName = ""
			return &u
		}, false},
		{"empty last name", func() *models.User {
			u := validUser()
			u.LastName = ""
			return &u
		}, false},
		{"empty email", func() *models.User {
			u := validUser()
			u.Email = ""
			return &u
		}, false},
		{"empty username", func() *models.User {
			u := validUser()
			u.Username = ""
			return &u
		}, false},
		{"empty password", func() *models.User {
			u := validUser()
			u.Password = ""
			return &u
		}, false},
		{"unknown role", func() *models.User {
			u := validUser()
			u.Role = "superuser"
			return &u
		}, false},
		{"empty role", func() *models.User {
			u := validUser()
			u.Role = ""
			return &u
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ValidateFields(tt.user()))
		})
	}
}

func TestService_AddUser(t *testing.T) {
	tests := []struct {
		name       string
		user       models.User
		setupMocks func(r *RepoMock, c *CacheMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name: "success",
			user: validUser(),
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				r.On("GetUserByUsername", mock.Anything, "ivan").
					Return(nil, repository.ErrUserNotFound).Once()
				r.On("GetUserByEmail", mock.Anything, "ivan@example.com").
					Return(nil, repository.ErrUserNotFound).Once()
				r.On("SaveUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					// пароль должен быть захэширован до записи
					return u.Username == "ivan" && u.Password != "secret123" &&
						bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")) == nil
				})).Return(42, nil).Once()
				c.On("Set", mock.Anything, "user:42", mock.Anything, time.Hour).Return(nil).Once()
				p.On("Publish", mock.MatchedBy(func(e events.UserEvent) bool {
					return e.Type == events.UserCreated && e.Username == "ivan"
				})).Return(nil).Once()
			},
		},
		{
			name: "missing fields",
			user: models.User{Username: "ivan"},
			setupMocks: func(_ *RepoMock, _ *CacheMock, _ *PublisherMock) {
			},
			wantErr: ErrInvalidUser,
		},
		{
			name: "username taken",
			user: validUser(),
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				existing := validUser()
				r.On("GetUserByUsername", mock.Anything, "ivan").Return(&existing, nil).Once()
			},
			wantErr: ErrUsernameTaken,
		},
		{
			name: "email taken",
			user: validUser(),
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				existing := validUser()
				r.On("GetUserByUsername", mock.Anything, "ivan").
					Return(nil, repository.ErrUserNotFound).Once()
				r.On("GetUserByEmail", mock.Anything, "ivan@example.com").
					Return(&existing, nil).Once()
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "lost race maps to username conflict",
			user: validUser(),
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("GetUserByUsername", mock.Anything, "ivan").
					Return(nil, repository.ErrUserNotFound).Once()
				r.On("GetUserByEmail", mock.Anything, "ivan@example.com").
					Return(nil, repository.ErrUserNotFound).Once()
				r.On("SaveUser", mock.Anything, mock.Anything).
					Return(0, repository.ErrUniqueViolation).Once()
			},
			wantErr: ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo, cache, pub)

			svc := New(repo, cache, pub, newNoopLogger())
			created, err := svc.AddUser(context.Background(), tt.user)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, created)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 42, created.ID)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestService_FindByID(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		svc := New(new(RepoMock), new(CacheMock), nil, newNoopLogger())
		_, err := svc.FindByID(context.Background(), 0)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("cache miss reads storage and caches", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		u := validUser()

		cache.On("Get", mock.Anything, "user:1", mock.Anything).Return(false, nil).Once()
		repo.On("GetUserByID", mock.Anything, 1).Return(&u, nil).Once()
		cache.On("Set", mock.Anything, "user:1", &u, time.Hour).Return(nil).Once()

		svc := New(repo, cache, nil, newNoopLogger())
		got, err := svc.FindByID(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, "ivan", got.Username)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips storage", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)

		cache.On("Get", mock.Anything, "user:1", mock.Anything).Return(true, nil).Once()

		svc := New(repo, cache, nil, newNoopLogger())
		_, err := svc.FindByID(context.Background(), 1)
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)

		cache.On("Get", mock.Anything, "user:7", mock.Anything).Return(false, nil).Once()
		repo.On("GetUserByID", mock.Anything, 7).Return(nil, repository.ErrUserNotFound).Once()

		svc := New(repo, cache, nil, newNoopLogger())
		_, err := svc.FindByID(context.Background(), 7)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_Availability(t *testing.T) {
	t.Run("username free", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByUsername", mock.Anything, "free").
			Return(nil, repository.ErrUserNotFound).Once()

		svc := New(repo, new(CacheMock), nil, newNoopLogger())
		available, err := svc.IsUsernameAvailable(context.Background(), "free")
		assert.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("username taken", func(t *testing.T) {
		repo := new(RepoMock)
		u := validUser()
		repo.On("GetUserByUsername", mock.Anything, "ivan").Return(&u, nil).Once()

		svc := New(repo, new(CacheMock), nil, newNoopLogger())
		available, err := svc.IsUsernameAvailable(context.Background(), "ivan")
		assert.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("storage failure surfaces", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "x@example.com").
			Return(nil, errors.New("connection refused")).Once()

		svc := New(repo, new(CacheMock), nil, newNoopLogger())
		_, err := svc.IsEmailAvailable(context.Background(), "x@example.com")
		assert.Error(t, err)
	})
}

func TestService_UpdateUser(t *testing.T) {
	tests := []struct {
		name            string
		mutate          func(u *models.User)
		allowRoleChange bool
		setupMocks      func(r *RepoMock, c *CacheMock, p *PublisherMock)
		wantErr         error
	}{
		{
			name:   "success without changes",
			mutate: func(_ *models.User) {},
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				persisted := validUser()
				r.On("GetUserByID", mock.Anything, 1).Return(&persisted, nil).Once()
				r.On("UpdateUser", mock.Anything, mock.Anything).Return(int64(1), nil).Once()
				c.On("Invalidate", mock.Anything, "user:1").Return(nil).Once()
				p.On("Publish", mock.MatchedBy(func(e events.UserEvent) bool {
					return e.Type == events.UserUpdated
				})).Return(nil).Once()
			},
		},
		{
			name:   "unknown id",
			mutate: func(_ *models.User) {},
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("GetUserByID", mock.Anything, 1).
					Return(nil, repository.ErrUserNotFound).Once()
			},
			wantErr: ErrUpdateUserNotFound,
		},
		{
			name:   "new username taken by other",
			mutate: func(u *models.User) { u.Username = "taken" },
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				persisted := validUser()
				other := validUser()
				other.ID = 2
				other.Username = "taken"
				r.On("GetUserByID", mock.Anything, 1).Return(&persisted, nil).Once()
				r.On("GetUserByUsername", mock.Anything, "taken").Return(&other, nil).Once()
			},
			wantErr: ErrUsernameTaken,
		},
		{
			name:   "new email taken by other",
			mutate: func(u *models.User) { u.Email = "taken@example.com" },
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				persisted := validUser()
				other := validUser()
				other.ID = 2
				other.Email = "taken@example.com"
				r.On("GetUserByID", mock.Anything, 1).Return(&persisted, nil).Once()
				r.On("GetUserByEmail", mock.Anything, "taken@example.com").Return(&other, nil).Once()
			},
			wantErr: ErrEmailTaken,
		},
		{
			name:   "role change denied without permission",
			mutate: func(u *models.User) { u.Role = models.RoleAdmin },
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				persisted := validUser()
				r.On("GetUserByID", mock.Anything, 1).Return(&persisted, nil).Once()
			},
			wantErr: ErrRoleChangeNotAllowed,
		},
		{
			name:            "role change allowed with permission",
			mutate:          func(u *models.User) { u.Role = models.RoleAdmin },
			allowRoleChange: true,
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				persisted := validUser()
				r.On("GetUserByID", mock.Anything, 1).Return(&persisted, nil).Once()
				r.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Role == models.RoleAdmin
				})).Return(int64(1), nil).Once()
				c.On("Invalidate", mock.Anything, "user:1").Return(nil).Once()
				p.On("Publish", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:   "row vanished between read and write",
			mutate: func(_ *models.User) {},
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				persisted := validUser()
				r.On("GetUserByID", mock.Anything, 1).Return(&persisted, nil).Once()
				r.On("UpdateUser", mock.Anything, mock.Anything).Return(int64(0), nil).Once()
			},
			wantErr: ErrUpdateUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo, cache, pub)

			u := validUser()
			tt.mutate(&u)

			svc := New(repo, cache, pub, newNoopLogger())
			ok, err := svc.UpdateUser(context.Background(), u, tt.allowRoleChange)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, ok)
			} else {
				assert.NoError(t, err)
				assert.True(t, ok)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestService_DeleteUserByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		pub := new(PublisherMock)
		u := validUser()

		repo.On("GetUserByID", mock.Anything, 1).Return(&u, nil).Once()
		repo.On("DeleteUser", mock.Anything, 1).Return(int64(1), nil).Once()
		cache.On("Invalidate", mock.Anything, "user:1").Return(nil).Once()
		pub.On("Publish", mock.MatchedBy(func(e events.UserEvent) bool {
			return e.Type == events.UserDeleted && e.Username == "ivan"
		})).Return(nil).Once()

		svc := New(repo, cache, pub, newNoopLogger())
		ok, err := svc.DeleteUserByID(context.Background(), 1)
		assert.NoError(t, err)
		assert.True(t, ok)
		pub.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := New(new(RepoMock), new(CacheMock), nil, newNoopLogger())
		_, err := svc.DeleteUserByID(context.Background(), -5)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, 9).
			Return(nil, repository.ErrUserNotFound).Once()

		svc := New(repo, new(CacheMock), nil, newNoopLogger())
		_, err := svc.DeleteUserByID(context.Background(), 9)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_LoadPrincipalByUsername(t *testing.T) {
	t.Run("builds principal from record", func(t *testing.T) {
		repo := new(RepoMock)
		u := validUser()
		u.Password = "$2a$10$hash"
		repo.On("GetUserByUsername", mock.Anything, "ivan").Return(&u, nil).Once()

		svc := New(repo, new(CacheMock), nil, newNoopLogger())
		p, err := svc.LoadPrincipalByUsername(context.Background(), "ivan")
		assert.NoError(t, err)
		assert.Equal(t, "ivan", p.Username)
		assert.Equal(t, "$2a$10$hash", p.PasswordHash)
		assert.Equal(t, []string{models.RoleUser}, p.Authorities)
		assert.NotNil(t, p.User)
	})

	t.Run("unknown username", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByUsername", mock.Anything, "ghost").
			Return(nil, repository.ErrUserNotFound).Once()

		svc := New(repo, new(CacheMock), nil, newNoopLogger())
		_, err := svc.LoadPrincipalByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrUnknownUser)
	})

	t.Run("empty username", func(t *testing.T) {
		svc := New(new(RepoMock), new(CacheMock), nil, newNoopLogger())
		_, err := svc.LoadPrincipalByUsername(context.Background(), "")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
