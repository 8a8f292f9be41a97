package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/curia-network/curia/internal/api"
	"github.com/curia-network/curia/internal/app/engine"
	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/assets"
	"github.com/curia-network/curia/internal/infra/badge"
	"github.com/curia-network/curia/internal/infra/bonding"
	"github.com/curia-network/curia/internal/infra/community"
	"github.com/curia-network/curia/internal/infra/credits"
	"github.com/curia-network/curia/internal/infra/epoch"
	"github.com/curia-network/curia/internal/infra/governance"
	"github.com/curia-network/curia/internal/infra/observability"
	"github.com/curia-network/curia/internal/infra/score"
	"github.com/curia-network/curia/internal/infra/sqlite"
	"github.com/curia-network/curia/internal/infra/verify"
)

// tallyInterval paces the housekeeping pass that settles due proposals.
const tallyInterval = time.Minute

// Daemon is an assembled curia node ready to run.
type Daemon struct {
	config  Config
	engine  *engine.Engine
	clock   *epoch.Source
	journal *sqlite.DB
	api     *api.Server
	server  *http.Server
}

// New assembles a daemon from its configuration: stores seeded with the
// configured boot parameters, the optional journal and badge catalog,
// and the API server. Nothing listens until Run.
func New(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rate, err := parseDecayRate(cfg.Engine.DecayRatePerSecond)
	if err != nil {
		return nil, err
	}

	scores := score.NewLedger(score.Config{
		DecayRatePerSecond: rate,
		HistoryLimit:       cfg.Engine.HistoryLimit,
	})
	creditLedger := credits.NewLedger()
	bonds := bonding.NewLedger(bonding.Config{
		LockDuration: time.Duration(cfg.Engine.UnbondLockSeconds) * time.Second,
	}, scores)
	gov := governance.NewEngine(governance.Config{
		VotingPeriod:   time.Duration(cfg.Engine.VotingPeriodSeconds) * time.Second,
		QuorumWeight:   cfg.Engine.QuorumWeight,
		MinimumDeposit: cfg.Engine.MinimumDeposit,
	}, creditLedger)
	verifier := verify.NewVerifier(verify.Config{
		RequiredQuorum: cfg.Engine.RequiredRevealQuorum,
	})
	badges := badge.NewEvaluator(scores, bonds)
	if cfg.Badges.Catalog != "" {
		if err := badges.LoadCatalog(cfg.Badges.Catalog); err != nil {
			return nil, fmt.Errorf("badge catalog: %w", err)
		}
	}

	var journal *sqlite.DB
	if cfg.Journal.Path != "" {
		journal, err = sqlite.Open(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
	}

	eng := engine.New(engine.Config{
		SubmissionBond:   cfg.Engine.SubmissionBond,
		ContributorAward: cfg.Engine.ContributorAward,
		VerifierAward:    cfg.Engine.VerifierAward,
	}, engine.Deps{
		Scores:      scores,
		Verifier:    verifier,
		Bonds:       bonds,
		Governance:  gov,
		Badges:      badges,
		Communities: community.NewRegistry(),
		Credits:     creditLedger,
		Assets:      assets.NewRegistry(),
		Journal:     journalOrNil(journal),
		Tracer:      observability.NewTracer(observability.DefaultTracerConfig()),
	})

	var genesis time.Time
	if cfg.Epoch.Genesis != "" {
		genesis, err = time.Parse(time.RFC3339, cfg.Epoch.Genesis)
		if err != nil {
			return nil, fmt.Errorf("epoch genesis: %w", err)
		}
	}
	clock := epoch.New(epoch.Config{
		Genesis:     genesis,
		EpochLength: time.Duration(cfg.Epoch.EpochLengthSeconds) * time.Second,
	})

	apiServer := api.NewServer(api.Config{
		AuthSecret:        cfg.API.AuthSecret,
		EnableMetrics:     cfg.API.EnableMetrics,
		CORSOrigins:       cfg.API.CORSOrigins,
		AllowTimeOverride: cfg.API.AllowTimeOverride,
	}, eng, clock)

	return &Daemon{
		config:  cfg,
		engine:  eng,
		clock:   clock,
		journal: journal,
		api:     apiServer,
	}, nil
}

// journalOrNil avoids wrapping a nil *sqlite.DB in a non-nil interface.
func journalOrNil(db *sqlite.DB) domain.Journal {
	if db == nil {
		return nil
	}
	return db
}

// Engine exposes the assembled engine, for embedding and tests.
func (d *Daemon) Engine() *engine.Engine { return d.engine }

// Clock exposes the epoch source.
func (d *Daemon) Clock() *epoch.Source { return d.clock }

// Handler exposes the HTTP routes without binding a listener.
func (d *Daemon) Handler() http.Handler { return d.api.Handler() }

// Run serves the API until the context is canceled, settling due
// proposals on a housekeeping tick. Shutdown is graceful: in-flight
// requests get 10 seconds to finish, then the journal closes.
func (d *Daemon) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", d.config.API.Host, d.config.API.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	d.server = &http.Server{Handler: d.api.Handler()}
	log.Printf("[daemon] listening on %s", ln.Addr())

	serveErr := make(chan error, 1)
	go func() { serveErr <- d.server.Serve(ln) }()

	ticker := time.NewTicker(tallyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := d.server.Shutdown(shutdownCtx)
			<-serveErr
			d.Close()
			log.Printf("[daemon] stopped")
			return err
		case err := <-serveErr:
			d.Close()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ticker.C:
			d.housekeep(d.clock.Now())
		}
	}
}

// housekeep settles proposals whose voting deadlines have passed.
func (d *Daemon) housekeep(now time.Time) {
	if settled := d.engine.TallyDue(now); len(settled) > 0 {
		log.Printf("[daemon] housekeeping settled %d proposal(s)", len(settled))
	}
}

// Close releases held resources. Run calls it on the way out; callers
// that only assembled a daemon close it themselves.
func (d *Daemon) Close() {
	if d.journal != nil {
		if err := d.journal.Close(); err != nil {
			log.Printf("[daemon] close journal: %v", err)
		}
	}
}
