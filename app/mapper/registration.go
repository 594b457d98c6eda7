package mapper

import (
	"github.com/macoc/registration-service/app/entity"
	"github.com/macoc/registration-service/app/types"
)

func ReceiptToResponse(receipt *entity.Receipt, message string) *types.RegistrationResponse {
	if receipt == nil {
		return nil
	}
	return &types.RegistrationResponse{
		Success:        true,
		RegistrationID: receipt.RowNumber,
		SheetName:      receipt.SheetName,
		Message:        message,
	}
}

func DirectoryToResponse(entries []entity.DirectoryEntry) *types.DirectoryResponse {
	items := make([]types.DirectoryEntry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, types.DirectoryEntry{
			Name:     entry.Name,
			Category: entry.Category,
			City:     entry.City,
			Phone:    entry.Phone,
			Email:    entry.Email,
			Website:  entry.Website,
		})
	}
	return &types.DirectoryResponse{Entries: items}
}
