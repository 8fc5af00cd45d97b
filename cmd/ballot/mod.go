// Package main implements the ballot command line tool. It drives a voting
// form stored in a bbolt database: the administrator registers the voters and
// moves the workflow forward, the voters submit proposals and cast votes.
//
// The tool reads a small YAML configuration that names the administrator and
// the database file, for instance:
//
//	admin: alice
//	db: /var/lib/ballot/ballot.db
//
// Every command is executed atomically inside one database transaction, so a
// rejected command leaves the form untouched.
package main

import (
	"os"

	"github.com/rs/xid"
	"github.com/urfave/cli/v2"
	"go.dedis.ch/ballot"
	"go.dedis.ch/ballot/contracts/voting"
	"go.dedis.ch/ballot/core/access"
	"go.dedis.ch/ballot/core/access/acl"
	"go.dedis.ch/ballot/core/execution"
	"go.dedis.ch/ballot/core/execution/native"
	"go.dedis.ch/ballot/core/store/kv"
	"go.dedis.ch/ballot/core/txn"
	"go.dedis.ch/ballot/core/txn/basic"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// accessKey is the credential identifier of the administrator grant.
var accessKey = []byte{0xba, 0x11, 0x07}

// bucketName is the database bucket holding the form and the permissions.
var bucketName = []byte("ballot")

func main() {
	err := makeApp().Run(os.Args)
	if err != nil {
		ballot.Logger.Fatal().Err(err).Msg("command failed")
	}
}

func makeApp() *cli.App {
	voterFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "voter",
			Usage:    "identity of the voter to register",
			Required: true,
		},
	}

	proposalFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "proposal",
			Usage:    "description of the proposal",
			Required: true,
		},
	}

	voterArg := func(c *cli.Context) []txn.Arg {
		return []txn.Arg{{Key: voting.VoterArg, Value: []byte(c.String("voter"))}}
	}

	proposalArg := func(c *cli.Context) []txn.Arg {
		return []txn.Arg{{Key: voting.ProposalArg, Value: []byte(c.String("proposal"))}}
	}

	return &cli.App{
		Name:  "ballot",
		Usage: "drive a permissioned, status-gated voting workflow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the configuration file",
				Value: "ballot.yaml",
			},
			&cli.StringFlag{
				Name:  "identity",
				Usage: "identity of the caller",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "setup",
				Usage:  "create the database and grant the administrator",
				Action: setupAction,
			},
			workflowCommand("register", "register a voter",
				voting.CmdRegister, voterFlags, voterArg),
			workflowCommand("start-proposals", "open the proposals registration",
				voting.CmdStartProposals, nil, nil),
			workflowCommand("end-proposals", "close the proposals registration",
				voting.CmdEndProposals, nil, nil),
			workflowCommand("start-voting", "open the voting session",
				voting.CmdStartVoting, nil, nil),
			workflowCommand("end-voting", "close the voting session",
				voting.CmdEndVoting, nil, nil),
			workflowCommand("propose", "submit a proposal",
				voting.CmdPropose, proposalFlags, proposalArg),
			workflowCommand("proposals", "list the proposals",
				voting.CmdList, nil, nil),
			workflowCommand("vote", "cast a vote for a proposal description",
				voting.CmdVote, proposalFlags, proposalArg),
			workflowCommand("tally", "compute the winning proposal",
				voting.CmdTally, nil, nil),
			workflowCommand("winner", "display the winning proposal",
				voting.CmdWinner, nil, nil),
			workflowCommand("status", "display the current status",
				voting.CmdStatus, nil, nil),
		},
	}
}

// workflowCommand builds a CLI command that executes a contract command with
// the arguments extracted from the flags.
func workflowCommand(name, usage string, cmd voting.Command, flags []cli.Flag,
	args func(*cli.Context) []txn.Arg) *cli.Command {

	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: flags,
		Action: func(c *cli.Context) error {
			extra := []txn.Arg{}
			if args != nil {
				extra = args(c)
			}

			return runCommand(c, cmd, extra...)
		},
	}
}

func setupAction(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return xerrors.Errorf("failed to load config: %v", err)
	}

	db, err := kv.New(cfg.DB)
	if err != nil {
		return xerrors.Errorf("failed to open db: %v", err)
	}

	defer db.Close()

	srvc := acl.NewService()

	err = db.Update(func(dtx kv.WritableTx) error {
		bucket, err := dtx.GetBucketOrCreate(bucketName)
		if err != nil {
			return xerrors.Errorf("failed to open bucket: %v", err)
		}

		return srvc.Grant(kv.NewSnapshot(bucket),
			voting.NewCreds(accessKey), access.Principal(cfg.Admin))
	})
	if err != nil {
		return xerrors.Errorf("failed to grant: %v", err)
	}

	ballot.Logger.Info().Msgf("granted administrator to '%s'", cfg.Admin)

	return nil
}

func runCommand(c *cli.Context, cmd voting.Command, args ...txn.Arg) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return xerrors.Errorf("failed to load config: %v", err)
	}

	logger := ballot.Logger.With().Str("req", xid.New().String()).Logger()

	db, err := kv.New(cfg.DB)
	if err != nil {
		return xerrors.Errorf("failed to open db: %v", err)
	}

	defer db.Close()

	contract := voting.NewContract(accessKey, acl.NewService())
	contract.SetPrinter(c.App.Writer)

	exec := native.NewExecution()
	voting.RegisterContract(exec, contract)

	ident := access.Principal(c.String("identity"))

	tx := basic.NewTransaction(ident,
		basic.WithArg(native.ContractArg, []byte(voting.ContractName)),
		basic.WithArg(voting.CmdArg, []byte(cmd)),
		basic.WithArgs(args...))

	logger.Info().
		Str("command", string(cmd)).
		Str("identity", ident.String()).
		Msg("executing command")

	return db.Update(func(dtx kv.WritableTx) error {
		bucket, err := dtx.GetBucketOrCreate(bucketName)
		if err != nil {
			return xerrors.Errorf("failed to open bucket: %v", err)
		}

		res, err := exec.Execute(kv.NewSnapshot(bucket), execution.Step{Current: tx})
		if err != nil {
			return xerrors.Errorf("failed to execute: %v", err)
		}

		// Returning an error rolls the transaction back, so a rejected
		// command commits nothing.
		if !res.Accepted {
			return xerrors.New(res.Message)
		}

		return nil
	})
}

// config contains the settings of the ballot tool.
type config struct {
	// Admin is the identity granted to drive the workflow.
	Admin string `yaml:"admin"`

	// DB is the path of the database file.
	DB string `yaml:"db"`
}

func loadConfig(path string) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, xerrors.Errorf("failed to read '%s': %v", path, err)
	}

	cfg := config{}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return config{}, xerrors.Errorf("failed to unmarshal config: %v", err)
	}

	if cfg.Admin == "" {
		return config{}, xerrors.New("missing admin identity")
	}

	if cfg.DB == "" {
		cfg.DB = "ballot.db"
	}

	return cfg, nil
}
