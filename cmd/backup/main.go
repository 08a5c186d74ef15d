package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"giftcircle/internal/config"
	"giftcircle/internal/database"
	"giftcircle/internal/service"
	"giftcircle/pkg/logger"
)

var (
	exportOutput string
	importInput  string
	importClear  bool
	assumeYes    bool

	log *logrus.Logger

	rootCmd = &cobra.Command{
		Use:   "backup",
		Short: "GiftCircle database backup tool",
		Long: `Export and import every GiftCircle table as a single JSON document.

The database is selected with the same environment variables as the server:
DATABASE_TYPE (sqlite, postgres or mysql), DB_PATH and DATABASE_URL.`,
		SilenceUsage: true,
	}
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the database to a JSON file",
		RunE:  runExport,
	}
	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import a JSON backup into the database",
		Long:  `Imports a backup written by "backup export". Rows keep their IDs, so import into an empty database or pass --clear.`,
		RunE:  runImport,
	}
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "input file path")
	importCmd.Flags().BoolVar(&importClear, "clear", false, "clear existing data before import (destructive)")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation before clearing")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackupService connects using the server's configuration and brings the
// schema up to date
func openBackupService(ctx context.Context) (*service.BackupService, *database.DB, error) {
	cfg := config.Load()
	log = logger.New(cfg.LogLevel)

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return service.NewBackupService(db, log), db, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	backupService, db, err := openBackupService(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	// Generate default filename if not provided
	outputPath := exportOutput
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	// Ensure directory exists
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	log.WithField("path", outputPath).Info("Exporting database")
	if _, err := backupService.Export(ctx, file); err != nil {
		return err
	}

	if info, err := file.Stat(); err == nil {
		log.WithField("size_mb", fmt.Sprintf("%.2f", float64(info.Size())/1024/1024)).Info("Export complete")
	}
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	file, err := os.Open(importInput)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	backupService, db, err := openBackupService(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if importClear {
		if !assumeYes && !confirm(cmd, "WARNING: This will delete all existing data. Type 'yes' to confirm: ") {
			log.Info("Import cancelled")
			return nil
		}
	}

	log.WithFields(logrus.Fields{"path": importInput, "clear": importClear}).Info("Importing database")
	if err := backupService.Import(ctx, file, importClear); err != nil {
		return err
	}

	log.Info("Import complete")
	return nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}
