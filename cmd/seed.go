/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/baking-contest/webapp/config"
	"github.com/baking-contest/webapp/internal/db"
	"github.com/baking-contest/webapp/internal/fieldcrypt"
	"github.com/baking-contest/webapp/internal/services"
	"github.com/baking-contest/webapp/internal/store"
	"github.com/baking-contest/webapp/types"
	"github.com/spf13/cobra"
)

// seedCmd inserts the demo accounts and a few sample entries. It uses the
// same key file as the server, so run it on the same host.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo users and sample contest entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		master, err := fieldcrypt.LoadOrCreateKey(cfg.KeyFile)
		if err != nil {
			return err
		}
		cipher, err := fieldcrypt.New(master)
		if err != nil {
			return err
		}

		personService := services.NewPersonService(store.NewPersonRepository(dbConn), cipher)
		entryService := services.NewEntryService(store.NewEntryRepository(dbConn))

		people := []types.Person{
			{Name: "alice", Age: 21, Phone: "111-111-1111", SecurityLevel: types.LevelParticipant, Password: "alicepass"},
			{Name: "bob", Age: 30, Phone: "222-222-2222", SecurityLevel: types.LevelJudge, Password: "bobpass"},
			{Name: "admin", Age: 40, Phone: "333-333-3333", SecurityLevel: types.LevelAdmin, Password: "adminpass"},
		}

		ids := make([]int, 0, len(people))
		for _, person := range people {
			created, err := personService.Create(cmd.Context(), person)
			if err != nil {
				return fmt.Errorf("seed person %s: %w", person.Name, err)
			}
			ids = append(ids, created.ID)
			fmt.Printf("seeded user %s (id=%d, level=%d)\n", created.Name, created.ID, created.SecurityLevel)
		}

		entries := []types.Entry{
			{UserID: ids[0], ItemName: "Chocolate Cake", NumExcellent: 5, NumOk: 3, NumBad: 0},
			{UserID: ids[1], ItemName: "Blueberry Muffins", NumExcellent: 2, NumOk: 4, NumBad: 1},
			{UserID: ids[2], ItemName: "Apple Pie", NumExcellent: 4, NumOk: 2, NumBad: 0},
		}
		for _, entry := range entries {
			created, err := entryService.Create(cmd.Context(), entry)
			if err != nil {
				return fmt.Errorf("seed entry %s: %w", entry.ItemName, err)
			}
			fmt.Printf("seeded entry %s (id=%d)\n", created.ItemName, created.ID)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
