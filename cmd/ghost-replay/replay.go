package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/ghost/beacon-chain/db/kv"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice"
	"github.com/prysmaticlabs/ghost/beacon-chain/forkchoice/store"
	"github.com/prysmaticlabs/ghost/config/params"
	fctest "github.com/prysmaticlabs/ghost/testing/forkchoice"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
)

type replayConfig struct {
	scenario string
	dataDir  string
	dotOut   string
	out      io.Writer
}

func replay(cliCtx *cli.Context) error {
	if cliCtx.Bool(minimalConfigFlag.Name) {
		log.Info("Using minimal config")
		params.OverrideBeaconConfig(params.MinimalSpecConfig())
	}
	if f := cliCtx.String(chainConfigFileFlag.Name); f != "" {
		if err := params.LoadChainConfigFile(f); err != nil {
			return err
		}
	}
	return runReplay(cliCtx.Context, &replayConfig{
		scenario: cliCtx.String(scenarioFlag.Name),
		dataDir:  cliCtx.String(dataDirFlag.Name),
		dotOut:   cliCtx.String(dotOutFlag.Name),
		out:      cliCtx.App.Writer,
	})
}

func runReplay(ctx context.Context, cfg *replayConfig) (err error) {
	sc, err := fctest.LoadScenario(cfg.scenario)
	if err != nil {
		return err
	}

	var storeOpts []store.Option
	var db *kv.Store
	if cfg.dataDir != "" {
		db, err = kv.NewKVStore(cfg.dataDir)
		if err != nil {
			return errors.Wrap(err, "could not open fork choice database")
		}
		storeOpts = append(storeOpts,
			store.WithPersister(db, 0),
			store.WithPersistErrorHandler(func(seq uint64, err error) {
				log.WithError(err).WithField("seq", seq).Warn("Commit not persisted")
			}),
		)
	}

	bb, err := fctest.NewBuilder(ctx, sc, storeOpts...)
	if err != nil {
		if db != nil {
			return multierr.Append(err, db.Close())
		}
		return err
	}
	defer func() {
		closeErr := bb.Close(ctx)
		if db != nil {
			closeErr = multierr.Append(closeErr, db.Close())
		}
		err = multierr.Append(err, closeErr)
	}()

	results, runErr := bb.Run(ctx)
	for _, r := range results {
		line := fmt.Sprintf("%3d %-11s %-8s", r.Index, r.Kind, r.Outcome)
		if r.Root != [32]byte{} {
			line += " " + hexutil.Encode(r.Root[:])
		}
		if r.Err != nil {
			line += " (" + r.Err.Error() + ")"
		}
		if _, err := fmt.Fprintln(cfg.out, line); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	service := bb.Service()
	head, err := service.HeadRoot(ctx)
	if err != nil {
		return err
	}
	justified, finalized := service.JustifiedCheckpoint(), service.FinalizedCheckpoint()
	if _, err := fmt.Fprintf(cfg.out, "head %s justified %d/%s finalized %d/%s\n",
		hexutil.Encode(head[:]),
		justified.Epoch, hexutil.Encode(justified.Root[:]),
		finalized.Epoch, hexutil.Encode(finalized.Root[:]),
	); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"steps":     len(results),
		"head":      hexutil.Encode(head[:]),
		"justified": justified.String(),
		"finalized": finalized.String(),
	}).Info("Scenario replayed")

	if cfg.dotOut == "" {
		return nil
	}
	nodes, err := service.Nodes(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.dotOut, []byte(forkchoice.TreeGraph(nodes, head)), 0600); err != nil {
		return errors.Wrap(err, "could not write dot file")
	}
	return nil
}
