package testutils

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/drive-clone/api/src/config"
	"github.com/drive-clone/api/src/database"
	"github.com/drive-clone/api/src/domain/files"
	"github.com/drive-clone/api/src/drivers/storage"
	auth_repo "github.com/drive-clone/api/src/repository/auth"
	files_repo "github.com/drive-clone/api/src/repository/files"
	"github.com/drive-clone/api/src/services/content"
	"github.com/drive-clone/api/src/services/operations"
	"github.com/drive-clone/api/src/services/security"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MiB is one mebibyte
const MiB = int64(1024 * 1024)

// TestEnv wires the real services against an in-memory SQLite database,
// miniredis and a temporary blob directory.
type TestEnv struct {
	Config *config.Config
	Logger *logrus.Logger

	DB        *database.DB
	Redis     *database.RedisClient
	Miniredis *miniredis.Miniredis

	Users        *auth_repo.UserRepository
	Entries      *files_repo.EntryRepository
	Reservations *files_repo.ReservationRepository
	Locker       *files_repo.OwnerLocker
	Blobs        *storage.LocalStore

	JWTService      *security.JWTService
	TokenService    *security.TokenService
	PasswordService *security.PasswordService
	OAuth           *FakeOAuthProvider
	Gate            *security.IdentityGate

	Hierarchy   *content.HierarchyService
	Quota       *content.QuotaService
	Upload      *content.UploadService
	Archives    *content.ArchiveService
	Email       *operations.EmailService
	Consistency *operations.ConsistencyService
}

// NewTestEnv creates a fully initialized TestEnv
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	redisClient := &database.RedisClient{Client: rdb}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	cfg := &config.Config{
		Environment:        "test",
		JWTSecret:          "test-secret-at-least-32-characters-long",
		FrontendURL:        "http://localhost:3000",
		PublicBaseURL:      "http://api.test",
		CORSOrigins:        []string{"http://localhost:3000"},
		RateLimitPerMin:    1000,
		StorageBackend:     config.BackendLocal,
		StoragePath:        t.TempDir(),
		BlobURLTTL:         time.Minute,
		MaxFileSize:        50 * MiB,
		MaxTotalStorage:    500 * MiB,
		FolderDeletePolicy: string(files.DeletePolicyReject),
		MaxFolderDepth:     64,
		UploadConcurrency:  2,
		ReservationTTL:     time.Hour,
		EmailFrom:          "Drive Clone <noreply@drive.test>",
	}

	db, err := database.NewTestDatabase(logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := auth_repo.NewUserRepository(db, logger)
	require.NoError(t, users.EnsureTable(ctx))
	entries := files_repo.NewEntryRepository(db.DB, logger)
	require.NoError(t, entries.EnsureTable(ctx))
	reservations := files_repo.NewReservationRepository(db.DB, logger)
	require.NoError(t, reservations.EnsureTable(ctx))
	locker := files_repo.NewOwnerLocker(db.DB, entries, reservations, logger)

	jwtSvc, err := security.NewJWTService(cfg.JWTSecret, cfg.BlobURLTTL, logger)
	require.NoError(t, err)
	tokenSvc := security.NewTokenService(redisClient, logger)
	passwordSvc := security.NewPasswordServiceWithCost(bcrypt.MinCost)
	oauth := &FakeOAuthProvider{Identity: &security.OAuthIdentity{Email: "oauth@example.com", Name: "OAuth User"}}
	gate := security.NewIdentityGate(users, jwtSvc, passwordSvc, tokenSvc, cfg.FrontendURL, logger, oauth)

	blobs, err := storage.NewLocalStore(cfg.StoragePath, cfg.PublicBaseURL, jwtSvc, logger)
	require.NoError(t, err)

	hierarchy := content.NewHierarchyService(entries, locker, blobs, content.HierarchyOptions{
		DeletePolicy: files.FolderDeletePolicy(cfg.FolderDeletePolicy),
		MaxDepth:     cfg.MaxFolderDepth,
	}, logger)
	quota := content.NewQuotaService(entries, reservations, locker, content.QuotaLimits{
		MaxFileSize:     cfg.MaxFileSize,
		MaxTotalStorage: cfg.MaxTotalStorage,
		ReservationTTL:  cfg.ReservationTTL,
	}, logger)
	upload := content.NewUploadService(hierarchy, quota, blobs, locker, cfg.UploadConcurrency, logger)

	return &TestEnv{
		Config:          cfg,
		Logger:          logger,
		DB:              db,
		Redis:           redisClient,
		Miniredis:       mr,
		Users:           users,
		Entries:         entries,
		Reservations:    reservations,
		Locker:          locker,
		Blobs:           blobs,
		JWTService:      jwtSvc,
		TokenService:    tokenSvc,
		PasswordService: passwordSvc,
		OAuth:           oauth,
		Gate:            gate,
		Hierarchy:       hierarchy,
		Quota:           quota,
		Upload:          upload,
		Archives:        content.NewArchiveService(hierarchy, upload, content.ArchiveLimits{MaxEntries: 50}, logger),
		Email:           operations.NewEmailService(cfg, logger),
		Consistency:     operations.NewConsistencyService(entries, reservations, blobs, cfg.ReservationTTL, logger),
	}
}

// SignUp registers a user and returns a signed-in session
func (e *TestEnv) SignUp(t *testing.T, email, password string) *security.Session {
	t.Helper()
	ctx := context.Background()
	_, err := e.Gate.CreateUser(ctx, email, password, strings.Split(email, "@")[0])
	require.NoError(t, err)
	session, err := e.Gate.CreateSession(ctx, email, password)
	require.NoError(t, err)
	return session
}

// Authorize adds the session's access token to req as a Bearer header
func Authorize(req *http.Request, session *security.Session) *http.Request {
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	return req
}

// FakeOAuthProvider is an in-process OAuth provider
type FakeOAuthProvider struct {
	mu       sync.Mutex
	Identity *security.OAuthIdentity
	Err      error
}

func (p *FakeOAuthProvider) Name() string { return "google" }

func (p *FakeOAuthProvider) AuthCodeURL(state string) string {
	return "https://accounts.test/o/oauth2/auth?state=" + state
}

func (p *FakeOAuthProvider) Exchange(ctx context.Context, code string) (*security.OAuthIdentity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	if code == "" {
		return nil, errors.New("missing authorization code")
	}
	return p.Identity, nil
}
