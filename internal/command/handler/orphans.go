package command

import (
	"context"
	"encoding/json"

	"bastion/internal/dto"

	"github.com/spf13/cobra"
)

type OrphanFinder interface {
	FindOrphans(ctx context.Context) ([]*dto.OrphanPermissionDto, error)
}

type OrphanHandler struct {
	finder OrphanFinder
}

func NewOrphanHandler(finder OrphanFinder) *OrphanHandler {
	return &OrphanHandler{finder: finder}
}

// List 以 JSON 輸出孤兒權限，只回報不修復
func (handler *OrphanHandler) List(cmd *cobra.Command) error {
	orphans, err := handler.finder.FindOrphans(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(orphans)
}
