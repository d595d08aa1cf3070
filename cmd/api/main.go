package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpadp "loanvault-backend/internal/adapter/http"
	"loanvault-backend/internal/adapter/middleware"
	"loanvault-backend/internal/adapter/repository/mysql"
	"loanvault-backend/internal/config"
	"loanvault-backend/internal/domain/uow"
	"loanvault-backend/internal/infrastructure/cache"
	"loanvault-backend/internal/infrastructure/db"
	"loanvault-backend/internal/infrastructure/events"
	"loanvault-backend/internal/usecase/admission"
	"loanvault-backend/internal/usecase/ledger"
)

// Stand-in collaborators until external verifier/signer integrations land.
// Predicates pass (the verifier whitelist still gates them); contract-side
// signature acceptance is off, so consent always needs a real envelope.
type acceptPredicates struct{}

func (acceptPredicates) VerifyPredicate(context.Context, string, []byte, string) (bool, error) {
	return true, nil
}

type rejectSignatures struct{}

func (rejectSignatures) IsValidSignature(context.Context, string, []byte, []byte) (bool, error) {
	return false, nil
}

func main() {
	_ = godotenv.Load()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(os.Stderr)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("mysql")
	}
	if err := mysql.AutoMigrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}

	tokens := mysql.NewTokenRepository(gdb)
	assets := mysql.NewAssetRepository(gdb)
	reads := uow.Repos{
		Loans:     mysql.NewLoanRepository(gdb),
		Receipts:  mysql.NewReceiptRepository(gdb),
		Locks:     mysql.NewLockRepository(gdb),
		Nonces:    mysql.NewNonceRepository(gdb),
		Approvals: mysql.NewApprovalRepository(gdb),
		Verifiers: mysql.NewVerifierRepository(gdb),
		Settings:  mysql.NewSettingsRepository(gdb),
		Values:    tokens,
		Assets:    assets,
	}
	unit := mysql.NewGormUoW(gdb)
	publisher := events.NewRedisPublisher(rdb, cfg.EventStream, log.Logger)

	led := ledger.NewUsecase(unit, reads, cfg.CustodyID, publisher)
	adm := admission.NewUsecase(led, unit, reads, acceptPredicates{}, rejectSignatures{}, cfg.CustodyID, publisher)

	h := httpadp.NewHandler()
	lh := httpadp.NewLoanHandler(adm, led)
	ah := httpadp.NewApprovalHandler(adm)
	adh := httpadp.NewAdminHandler(adm, led)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	// health stays outside auth
	e.GET("/health", h.Health)

	api := e.Group("")
	api.Use(middleware.JWTAuth([]byte(cfg.JWTSecret)))
	api.Use(middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	api.POST("/loans", lh.InitializeLoan)
	api.GET("/loans/:loan_id", lh.GetLoan)
	api.POST("/loans/:loan_id/repay", lh.Repay)
	api.POST("/loans/:loan_id/repay-part", lh.RepayPart)
	api.POST("/loans/:loan_id/claim", lh.Claim)
	api.POST("/loans/:loan_id/receipts/transfer", lh.TransferReceipt)
	api.GET("/loans/:loan_id/receipts/:side", lh.ReceiptOwner)

	api.POST("/nonces/cancel", lh.CancelNonce)
	api.GET("/nonces/:user/:nonce", lh.IsNonceUsed)

	api.POST("/approvals", ah.SetApproval)
	api.GET("/approvals/:owner/:delegate", ah.GetApproval)

	api.POST("/admin/verifiers", adh.SetVerifier)
	api.POST("/admin/verifiers/batch", adh.SetVerifiersBatch)
	api.POST("/admin/fee-rate", adh.SetFeeRate)
	api.POST("/admin/fee-controller", adh.SetFeeController)
	api.POST("/admin/fees/claim", adh.ClaimFees)
	api.POST("/admin/pause", adh.SetPaused)

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
