package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"college-quiz-service/internal/config"
	"college-quiz-service/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// cliPrincipal authors quizzes imported from the command line.
var cliPrincipal = domain.StaffPrincipal("cli", domain.RoleAdmin)

// NewImportCmd loads quizzes and roster entries from YAML or JSON files.
func NewImportCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import quizzes or students from a YAML/JSON file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "quiz FILE",
		Short: "Validate and store a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var quiz domain.Quiz
			if err := readDocument(args[0], &quiz); err != nil {
				return err
			}
			svc, err := openForImport(cmd, *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()

			saved, err := svc.quizzes.Create(cmd.Context(), cliPrincipal, quiz)
			if err != nil {
				return describeImportError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported quiz %s (%d questions, %d marks)\n",
				saved.ID, len(saved.Questions), saved.TotalMarks())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "students FILE",
		Short: "Upsert roster students",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var students []domain.Student
			if err := readDocument(args[0], &students); err != nil {
				return err
			}
			for i, st := range students {
				if st.ID == "" || st.Department == "" || st.Section == "" || st.Year < 1 {
					return fmt.Errorf("student #%d: id, department, year and section are required", i+1)
				}
			}
			svc, err := openForImport(cmd, *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.pgRoster.PutStudents(cmd.Context(), students); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d students\n", len(students))
			return nil
		},
	})
	return cmd
}

func openForImport(cmd *cobra.Command, configPath string) (*services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
		return nil, err
	}
	return buildServices(cmd.Context(), cfg)
}

// readDocument decodes a .json file with encoding/json and anything else as YAML.
func readDocument(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, v)
	} else {
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func describeImportError(err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	msg := verr.Error()
	for _, f := range verr.Fields {
		msg += fmt.Sprintf("\n  %s: %s", f.Field, f.Error)
	}
	return fmt.Errorf("%s", msg)
}
