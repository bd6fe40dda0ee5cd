package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/kb-refresh/internal/web"
	gitlabCtl "github.com/Laisky/kb-refresh/internal/web/gitlab/controller"
	"github.com/Laisky/kb-refresh/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `admin API for gitlab knowledge-base connections and refreshes`,
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

		svc, err := buildService(ctx, db)
		if err != nil {
			log.Logger.Panic("build refresh service", zap.Error(err))
		}

		web.RunServer(gconfig.Shared.GetString("listen"), gitlabCtl.New(svc))
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
