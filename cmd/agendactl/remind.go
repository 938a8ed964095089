package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"research-agenda/backend/internal/app"
	"research-agenda/backend/internal/dto"
)

func remindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "提醒相关操作",
	}
	cmd.AddCommand(remindRunCmd())
	return cmd
}

func remindRunCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "执行一轮提醒派发",
		Long:  "加载已启用的提醒，按评估时刻判定到期并发送邮件；另一轮正在执行时直接返回",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at 需为 RFC3339 时间: %w", err)
				}
				now = t
			}

			a, err := app.New(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Cycle.Run(cmd.Context(), now)
			if err != nil {
				return err
			}
			a.Logger.Info("提醒周期完成",
				zap.Int("due", report.Due),
				zap.Int("sent", report.Sent),
				zap.Int("failed", report.Failed),
				zap.Bool("locked", report.Locked),
			)

			out, _ := json.Marshal(dto.RunRemindersResponse{
				Due:     report.Due,
				Sent:    report.Sent,
				Failed:  report.Failed,
				Skipped: report.Skipped,
				Locked:  report.Locked,
			})
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "评估时刻（RFC3339），默认当前时间")
	return cmd
}
