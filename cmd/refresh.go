package cmd

import (
	"context"
	"fmt"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/kb-refresh/internal/web/gitlab/dto"
	"github.com/Laisky/kb-refresh/library/log"
)

var refreshCMD = &cobra.Command{
	Use:   "refresh",
	Short: "refresh",
	Long:  `run one knowledge-base refresh for an agent and exit`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		agentID := gconfig.Shared.GetString("agent-id")
		if agentID == "" {
			log.Logger.Panic("--agent-id is required")
		}

		db, err := openDB(ctx)
		if err != nil {
			log.Logger.Panic("open db", zap.Error(err))
		}

		svc, err := buildService(ctx, db)
		if err != nil {
			log.Logger.Panic("build refresh service", zap.Error(err))
		}

		run, err := svc.Refresh(ctx, agentID, func(p dto.Progress) {
			if p.CurrentFile != "" {
				fmt.Printf("[%s] %d/%d %s\n", p.Phase, p.Current, p.Total, p.CurrentFile)
				return
			}

			fmt.Printf("[%s]\n", p.Phase)
		})
		if err != nil {
			log.Logger.Panic("refresh", zap.Error(err), zap.String("agent_id", agentID))
		}

		fmt.Printf("run %s %s: processed=%d skipped=%d converted=%d\n",
			run.ID, run.Status, run.FilesProcessed, run.FilesSkipped, run.FilesConverted)
	},
}

func init() {
	refreshCMD.Flags().String("agent-id", "", "agent to refresh")
	rootCMD.AddCommand(refreshCMD)
}
