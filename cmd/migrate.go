package cmd

import (
	"context"

	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	gitlabModel "github.com/Laisky/kb-refresh/internal/web/gitlab/model"
	knowledgeModel "github.com/Laisky/kb-refresh/internal/web/knowledge/model"
	"github.com/Laisky/kb-refresh/library/log"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "migrate",
	Long:  `migrate db`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		db, err := openDB(ctx)
		if err != nil {
			log.Logger.Panic("open db", zap.Error(err))
		}

		if err := gitlabModel.RunMigrations(ctx, db); err != nil {
			log.Logger.Panic("migrate gitlab tables", zap.Error(err))
		}

		if err := knowledgeModel.RunMigrations(ctx, db); err != nil {
			log.Logger.Panic("migrate knowledge tables", zap.Error(err))
		}

		log.Logger.Info("migrations applied")
	},
}

func init() {
	rootCMD.AddCommand(migrateCMD)
}
