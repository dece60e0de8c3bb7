package command

import (
	commandHandler "bastion/internal/command/handler"
	"bastion/internal/service"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(
	NewCommand,
	commandHandler.NewSeedHandler,
	commandHandler.NewOrphanHandler,
	wire.Bind(new(commandHandler.Seeder), new(*service.SeedService)),
	wire.Bind(new(commandHandler.OrphanFinder), new(*service.PermissionService)),
)

type Command struct {
	seedHandler   *commandHandler.SeedHandler
	orphanHandler *commandHandler.OrphanHandler
}

// NewCommand .
func NewCommand(
	seedHandler *commandHandler.SeedHandler,
	orphanHandler *commandHandler.OrphanHandler,
) *Command {
	return &Command{
		seedHandler:   seedHandler,
		orphanHandler: orphanHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "建立或更新預設角色、資源、使用者與權限",
		RunE: func(cmd *cobra.Command, args []string) error {
			command, cleanup, err := newCmd()
			if err != nil {
				return err
			}
			defer cleanup()

			return command.seedHandler.Seed(cmd, seedFile)
		},
	}
	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed YAML file (default: built-in data)")

	rootCmd.AddCommand(
		seedCmd,
		&cobra.Command{
			Use:   "orphans",
			Short: "列出角色或資源已被刪除的權限",
			RunE: func(cmd *cobra.Command, args []string) error {
				command, cleanup, err := newCmd()
				if err != nil {
					return err
				}
				defer cleanup()

				return command.orphanHandler.List(cmd)
			},
		},
	)
}
