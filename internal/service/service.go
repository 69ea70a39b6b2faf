package service

import (
	"fmt"
	"time"

	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/config"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/handlers/cron"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/handlers/settlements"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/handlers/wallet"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/pg"
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/repo"
	contributionservice "github.com/provenvalueenterprises-collab/provenv-sub002/internal/service/contributionservice"
	penaltyservice "github.com/provenvalueenterprises-collab/provenv-sub002/internal/service/penaltyservice"
	settlementservice "github.com/provenvalueenterprises-collab/provenv-sub002/internal/service/settlementservice"
	walletservice "github.com/provenvalueenterprises-collab/provenv-sub002/internal/service/walletservice"
)

type Services struct {
	ContributionService cron.Service
	SettlementService   settlements.Service
	WalletService       wallet.Service

	workerPool *contributionservice.WorkerPool
}

func New(cfg *config.Config, repo *repo.Repositories, txManager pg.TXManager) (*Services, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("can't load timezone %q: %w", cfg.Timezone, err)
	}

	penaltyPolicy, err := penaltyservice.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("can't build penalty policy: %w", err)
	}

	workerPool := contributionservice.NewWorkerPool(cfg.Workers)
	contributionService := contributionservice.New(
		repo.AccountRepo,
		repo.WalletRepo,
		repo.ContributionRepo,
		repo.RunRepo,
		txManager,
		workerPool,
		time.Duration(cfg.AccountTimeoutMs)*time.Millisecond,
		location,
	)
	settlementService := settlementservice.New(repo.AccountRepo, repo.WalletRepo, penaltyPolicy, txManager)
	walletService := walletservice.New(repo.WalletRepo)

	return &Services{
		ContributionService: contributionService,
		SettlementService:   settlementService,
		WalletService:       walletService,
		workerPool:          workerPool,
	}, nil
}

// Close drains the contribution worker pool. Call only after run intake has
// stopped.
func (s *Services) Close() {
	s.workerPool.Close()
}
