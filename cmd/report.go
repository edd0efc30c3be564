package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/muse/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print posting analytics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := store.NewStore(cfg.Storage.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		rep, err := st.BuildReport(time.Now())
		if err != nil {
			return err
		}
		fmt.Print(rep.Format())

		recent, err := st.RecentPosts(5)
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			fmt.Println("Recent posts:")
			for _, r := range recent {
				fmt.Printf("  %s  %s - %s\n",
					r.PostedAt.Format("2006-01-02 15:04"), r.Title, r.Artist)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
