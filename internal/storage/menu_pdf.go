package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"github.com/jung-kurt/gofpdf/v2"
	"go.uber.org/zap"
)

// renderMaxAge is how long a rendered menu document is served before it is
// rebuilt from the current menu.
const renderMaxAge = time.Hour

// MenuDocuments renders per-organization menu PDFs under the static directory
// and hands out their public URLs.
type MenuDocuments struct {
	repos         repository.RepositoryManager
	staticDir     string
	publicBaseURL string

	mu sync.Mutex
}

// NewMenuDocuments creates a menu document store.
func NewMenuDocuments(repos repository.RepositoryManager, staticDir, publicBaseURL string) *MenuDocuments {
	return &MenuDocuments{
		repos:         repos,
		staticDir:     staticDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// MenuDocumentURL returns the public URL of the organization's menu PDF,
// rendering it first when missing or stale. Returns an empty URL when the
// organization has no active menu items.
func (s *MenuDocuments) MenuDocumentURL(ctx context.Context, org *domain.Organization) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	relPath := filepath.Join("menus", org.ID+".pdf")
	fullPath := filepath.Join(s.staticDir, relPath)

	if info, err := os.Stat(fullPath); err != nil || time.Since(info.ModTime()) > renderMaxAge {
		items, err := s.repos.MenuItems().ListActive(ctx, org.ID, "", "")
		if err != nil {
			return "", err
		}
		if len(items) == 0 {
			return "", nil
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return "", fmt.Errorf("failed to create menu directory: %w", err)
		}
		if err := renderMenuPDF(org, items, fullPath); err != nil {
			return "", err
		}
		logger.Base().Info("rendered menu document",
			zap.String("organization_id", org.ID),
			zap.Int("items", len(items)))
	}

	return s.publicBaseURL + "/static/" + filepath.ToSlash(relPath), nil
}

// renderMenuPDF writes the menu as an A4 PDF grouped by category.
func renderMenuPDF(org *domain.Organization, items []domain.MenuItem, path string) error {
	byCategory := make(map[string][]domain.MenuItem)
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Times", "B", 20)
	pdf.CellFormat(0, 12, org.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Times", "I", 12)
	pdf.CellFormat(0, 8, "Menu", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, category := range categories {
		pdf.SetFont("Times", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(category), "B", 1, "", false, 0, "")
		pdf.Ln(2)

		for _, item := range byCategory[category] {
			pdf.SetFont("Times", "B", 12)
			pdf.CellFormat(150, 7, item.Name, "", 0, "", false, 0, "")
			pdf.SetFont("Times", "", 12)
			pdf.CellFormat(0, 7, fmt.Sprintf("%.2f", item.Price), "", 1, "R", false, 0, "")

			if item.Description != "" {
				pdf.SetFont("Times", "", 10)
				pdf.MultiCell(0, 5, item.Description, "", "", false)
			}
			if len(item.Allergens) > 0 {
				pdf.SetFont("Times", "I", 9)
				pdf.MultiCell(0, 5, "Allergens: "+strings.Join(item.Allergens, ", "), "", "", false)
			}
			pdf.Ln(2)
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Times", "I", 8)
	pdf.SetY(-15)
	pdf.CellFormat(0, 10, fmt.Sprintf("Generated on %s", time.Now().Format("2006-01-02 15:04")), "", 0, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to save menu PDF: %w", err)
	}
	return nil
}
