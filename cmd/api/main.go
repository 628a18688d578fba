package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/config"
	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/handler"
	"github.com/Ignaci05/Area51Bazar/internal/infra/db"
	"github.com/Ignaci05/Area51Bazar/internal/infra/feed"
	"github.com/Ignaci05/Area51Bazar/internal/infra/memory"
	infraRepo "github.com/Ignaci05/Area51Bazar/internal/infra/repository"
	"github.com/Ignaci05/Area51Bazar/internal/logger"
	"github.com/Ignaci05/Area51Bazar/internal/metrics"
	"github.com/Ignaci05/Area51Bazar/internal/repository"
	"github.com/Ignaci05/Area51Bazar/internal/server"
	"github.com/Ignaci05/Area51Bazar/internal/usecase"
	auth "github.com/Ignaci05/Area51Bazar/internal/usecase/auth_usecase"
	"github.com/Ignaci05/Area51Bazar/internal/validator"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID string, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// 保存先ごとのrepo一式
type stores struct {
	tx       repository.TransactionManager
	products repository.ProductRepository
	sales    repository.SaleRepository
	audit    repository.AuditLogRepository
	users    repository.UserRepository
	carts    repository.CartRepository
	health   func(ctx context.Context) error
	close    func()
}

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		Output:   cfg.LogOutput,
		FilePath: cfg.LogFile,
		Compress: true,
	})
	if err != nil {
		slog.Error("logger error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	st, err := openStores(cfg, log, m)
	if err != nil {
		return err
	}
	defer st.close()

	//ライブ表示の通知。REDIS_URLがあればインスタンス間で共有する
	hub := feed.NewHub()
	var notifier feed.Publisher = hub
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		bridge := feed.NewRedisBridge(rdb, hub, log)
		go bridge.Run(ctx)
		notifier = bridge
		st.carts = infraRepo.NewCartRedisRepository(rdb)

		dbHealth := st.health
		st.health = func(ctx context.Context) error {
			if err := dbHealth(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		}
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	deps := usecase.Deps{
		Notifier: notifier,
		Metrics:  m,
		Log:      log,
		Clock:    clock,
		IDs:      idGen,
	}

	//bcrypt（登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := &jwtIssuer{secret: []byte(cfg.JWTSecret), accessTTL: cfg.AccessTokenTTL}
	credValidator := validator.NewAuthValidator(st.users)

	registerUserUC := auth.NewRegisterUserUsecase(st.users, credValidator, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(st.users, credValidator, verifier, issuer, clock)
	meUC := auth.NewMeUsecase(st.users)

	if cfg.AdminEmail != "" {
		created, err := auth.EnsureAdmin(ctx, st.users, registerUserUC, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("admin account created", "email", cfg.AdminEmail)
		}
	}

	inventoryUC := usecase.NewInventoryUsecase(st.tx, st.products, deps)
	saleUC := usecase.NewSaleUsecase(st.tx, st.sales, st.users, deps)
	statsUC := usecase.NewStatsUsecase(st.sales, st.products, cfg.Location, deps)
	registerUC := usecase.NewRegisterUsecase(st.carts, st.products, saleUC, deps)
	employeeUC := usecase.NewEmployeeUsecase(st.users, st.audit, registerUserUC, deps)
	auditUC := usecase.NewAuditUsecase(st.audit)

	h := server.Handlers{
		Auth:          handler.NewAuthHandler(loginUC, meUC),
		Product:       handler.NewProductHandler(inventoryUC, hub),
		AdminProduct:  handler.NewAdminProductHandler(inventoryUC),
		Sale:          handler.NewSaleHandler(saleUC, statsUC, hub),
		Register:      handler.NewRegisterHandler(registerUC),
		AdminStats:    handler.NewAdminStatsHandler(statsUC),
		AdminEmployee: handler.NewAdminEmployeeHandler(employeeUC),
		Audit:         handler.NewAuditHandler(auditUC),
	}

	e := server.New(server.Options{
		Config:  cfg,
		Users:   st.users,
		Log:     log,
		Metrics: m,
		Health:  st.health,
	}, h)

	return server.Run(ctx, e, ":"+cfg.Port, log)
}

func openStores(cfg config.Config, log *slog.Logger, m *metrics.Metrics) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		return &stores{
			tx:       mem.TxManager(),
			products: mem.Products(),
			sales:    mem.Sales(),
			audit:    mem.AuditLogs(),
			users:    mem.Users(),
			carts:    mem.Carts(),
			health:   func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}

	//DB接続
	gormDB, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	//Redisが無いときのカートはDB
	return &stores{
		tx:       infraRepo.NewTxManagerGorm(gormDB, cfg.TxMaxAttempts, log, m),
		products: infraRepo.NewProductGormRepository(gormDB),
		sales:    infraRepo.NewSaleGormRepository(gormDB),
		audit:    infraRepo.NewAuditLogGormRepository(gormDB),
		users:    infraRepo.NewUserGormRepository(gormDB),
		carts:    infraRepo.NewCartGormRepository(gormDB),
		health:   sqlDB.PingContext,
		close: func() {
			if err := db.Close(gormDB); err != nil {
				log.Warn("db close failed", "error", err)
			}
		},
	}, nil
}
