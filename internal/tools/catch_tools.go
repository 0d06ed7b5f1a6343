package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/oceanai/sagarmitra/internal/store"
)

const catchHistoryPageSize = 5

func (r *Registry) handleCatchHistory(ctx context.Context, args map[string]any) (string, error) {
	if r.store == nil {
		return "", fmt.Errorf("catch store not configured")
	}

	userID := UserIDFromContext(ctx)
	if userID == "" {
		return "", fmt.Errorf("no user identity on request")
	}

	page := intArg(args, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := intArg(args, "limit", catchHistoryPageSize)
	if pageSize < 1 {
		pageSize = catchHistoryPageSize
	}

	// Fetch one extra record to detect whether more pages exist.
	offset := (page - 1) * pageSize
	records, err := r.store.ListCatches(userID, pageSize+1, offset)
	if err != nil {
		return fmt.Sprintf("⚠️ Could not fetch catch history: %v", err), nil
	}

	hasMore := len(records) > pageSize
	if hasMore {
		records = records[:pageSize]
	}

	if len(records) == 0 {
		if page == 1 {
			return "No catch records found yet. Upload a photo of your catch to start tracking!", nil
		}
		return fmt.Sprintf("No more records on page %d.", page), nil
	}

	lines := []string{fmt.Sprintf("🐟 **Catch History** (Page %d, showing %d records):", page, len(records))}
	for i, rec := range records {
		species := rec.Species
		if species == "" {
			species = "Unknown"
		}
		location := rec.Location
		if location == "" {
			location = "Unknown location"
		}
		line := fmt.Sprintf("  %d. **%s** — %s (%s)", offset+i+1, species, location, rec.CreatedAt.Format("2006-01-02"))
		if rec.Confidence > 0 {
			line += fmt.Sprintf(" [Confidence: %.0f%%]", rec.Confidence*100)
		}
		if rec.AnalysisStatus != "completed" {
			line += fmt.Sprintf(" [%s]", rec.AnalysisStatus)
		}
		lines = append(lines, line)
	}

	if hasMore {
		lines = append(lines, "", fmt.Sprintf("  → More records available. Ask for page %d.", page+1))
	}

	return strings.Join(lines, "\n"), nil
}

func (r *Registry) handleCatchDetails(ctx context.Context, args map[string]any) (string, error) {
	if r.store == nil {
		return "", fmt.Errorf("catch store not configured")
	}

	catchID, _ := args["catch_id"].(string)
	if catchID == "" {
		return "", fmt.Errorf("catch_id is required")
	}

	rec, err := r.store.GetCatch(catchID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("Could not find any catch record with ID %s.", catchID), nil
	}
	if err != nil {
		return fmt.Sprintf("⚠️ Could not fetch details for catch %s: %v", catchID, err), nil
	}

	if rec.UserID != UserIDFromContext(ctx) {
		return fmt.Sprintf("You do not have permission to view catch %s.", catchID), nil
	}

	species := rec.Species
	if species == "" {
		species = "Unknown"
	}
	location := rec.Location
	if location == "" {
		location = "Unknown location"
	}
	totalValue := int(math.Round(rec.WeightKg * float64(rec.PricePerKg)))
	sustainability := "Limited/Not Sustainable"
	if rec.Sustainable {
		sustainability = "Sustainable"
	}
	quality := rec.QualityGrade
	if quality == "" {
		quality = "Unknown"
	}

	lines := []string{
		fmt.Sprintf("🐟 **Specific Catch Details: %s** (%s)", species, rec.CreatedAt.Format("2006-01-02")),
		fmt.Sprintf("• Catch ID: %s", rec.ID),
		fmt.Sprintf("• Location: %s", location),
		fmt.Sprintf("• Confidence: %.1f%%", rec.Confidence*100),
		fmt.Sprintf("• Quality Grade: %s", quality),
		fmt.Sprintf("• Weight Estimate: %.2f KG", rec.WeightKg),
		fmt.Sprintf("• Estimated Value: ₹%d (@ ₹%d/kg)", totalValue, rec.PricePerKg),
		fmt.Sprintf("• Sustainability: %s", sustainability),
	}

	if rec.AnalysisStatus != "completed" {
		lines = append(lines, "",
			fmt.Sprintf("Note: Analysis status is currently '%s'. Some metrics may be missing or inaccurate until completed.", rec.AnalysisStatus))
	}

	return strings.Join(lines, "\n"), nil
}
