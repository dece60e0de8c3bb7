package command

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"bastion/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type Seeder interface {
	Seed(ctx context.Context, data service.SeedData) (*service.SeedReport, error)
}

type SeedHandler struct {
	logger *zap.Logger
	seeder Seeder
}

func NewSeedHandler(logger *zap.Logger, seeder Seeder) *SeedHandler {
	return &SeedHandler{logger: logger, seeder: seeder}
}

// LoadSeed 讀取指定檔案；未指定時使用內建資料
func LoadSeed(file string) (service.SeedData, error) {
	raw := defaultSeed
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return service.SeedData{}, err
		}
		raw = b
	}
	var data service.SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return service.SeedData{}, fmt.Errorf("decode seed data: %w", err)
	}
	return data, nil
}

func (handler *SeedHandler) Seed(cmd *cobra.Command, file string) error {
	data, err := LoadSeed(file)
	if err != nil {
		return err
	}
	report, err := handler.seeder.Seed(cmd.Context(), data)
	if err != nil {
		handler.logger.Error("seed failed", zap.Error(err))
		return err
	}
	for _, entity := range []string{"resource", "role", "user", "permission"} {
		cmd.Printf("%-10s created=%d updated=%d\n", entity, report.Created[entity], report.Updated[entity])
	}
	return nil
}
