package repo

import (
	"github.com/provenvalueenterprises-collab/provenv-sub002/internal/pg"
	accountrepo "github.com/provenvalueenterprises-collab/provenv-sub002/internal/repo/account-repo"
	contributionrepo "github.com/provenvalueenterprises-collab/provenv-sub002/internal/repo/contribution-repo"
	runrepo "github.com/provenvalueenterprises-collab/provenv-sub002/internal/repo/run-repo"
	walletrepo "github.com/provenvalueenterprises-collab/provenv-sub002/internal/repo/wallet-repo"
)

type Repositories struct {
	AccountRepo      *accountrepo.Repository
	WalletRepo       *walletrepo.Repository
	ContributionRepo *contributionrepo.Repository
	RunRepo          *runrepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		AccountRepo:      accountrepo.New(conn, txManager),
		WalletRepo:       walletrepo.New(conn, txManager),
		ContributionRepo: contributionrepo.New(conn, txManager),
		RunRepo:          runrepo.New(conn),
	}
}
