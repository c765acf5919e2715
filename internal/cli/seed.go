package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/application/usecase"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
	"github.com/jhoicas/branch-pos-api/internal/infrastructure/postgres"
)

// SeedRow fila del CSV de catálogo: name,cost_price,sell_price,stock.
type SeedRow struct {
	Line      int
	Name      string
	CostPrice decimal.Decimal
	SellPrice decimal.Decimal
	Stock     int
}

// SeedResult resumen de una carga.
type SeedResult struct {
	Created int
	Skipped int
}

// ProductCreator alta de productos con las mismas reglas que la API.
type ProductCreator interface {
	Create(ctx context.Context, sess *identity.Session, in dto.CreateProductRequest) (*dto.ProductResponse, error)
}

type seedOptions struct {
	branch string
	file   string
	latin1 bool
}

// NewSeedProductsCommand crea el comando seed-products.
func NewSeedProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed-products",
		Short: "Carga el catálogo de una sucursal desde un CSV",
		Long: `Carga productos desde un CSV con columnas name,cost_price,sell_price,stock.
La cabecera es opcional. Los nombres repetidos en la sucursal se omiten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, rootOpts, opts)
		},
	}
	cmd.Flags().StringVar(&opts.branch, "branch", "", "id de la sucursal destino")
	cmd.Flags().StringVar(&opts.file, "file", "", "ruta del CSV")
	cmd.Flags().BoolVar(&opts.latin1, "latin1", false, "el archivo viene en ISO-8859-1")
	_ = cmd.MarkFlagRequired("branch")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runSeed(cmd *cobra.Command, rootOpts *RootOptions, opts *seedOptions) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("abrir CSV: %w", err)
	}
	defer f.Close()

	rows, err := ParseProductsCSV(f, opts.latin1)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, log, err := rootOpts.openPool(ctx, cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := ensureBranch(ctx, postgres.NewBranchRepository(pool), opts.branch); err != nil {
		return err
	}
	uc := usecase.NewProductUseCase(postgres.NewProductRepository(pool))
	res, err := SeedProducts(ctx, uc, opts.branch, rows, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log.Debug().Int("created", res.Created).Int("skipped", res.Skipped).Msg("carga de catálogo terminada")
	fmt.Fprintf(cmd.OutOrStdout(), "productos creados: %d, omitidos: %d\n", res.Created, res.Skipped)
	return nil
}

func ensureBranch(ctx context.Context, repo repository.BranchRepository, id string) error {
	b, err := repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if b == nil {
		return fmt.Errorf("sucursal %q no existe", id)
	}
	return nil
}

// ParseProductsCSV lee las filas del catálogo. Con latin1 decodifica ISO-8859-1 a UTF-8.
func ParseProductsCSV(r io.Reader, latin1 bool) ([]SeedRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var rows []SeedRow
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer CSV: %w", err)
		}
		if line == 1 && isHeader(rec) {
			continue
		}
		row, err := parseRow(line, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isHeader(rec []string) bool {
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	return first == "name" || first == "nombre"
}

func parseRow(line int, rec []string) (SeedRow, error) {
	cost, err := decimal.NewFromString(strings.TrimSpace(rec[1]))
	if err != nil {
		return SeedRow{}, fmt.Errorf("línea %d: cost_price inválido %q", line, rec[1])
	}
	sell, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
	if err != nil {
		return SeedRow{}, fmt.Errorf("línea %d: sell_price inválido %q", line, rec[2])
	}
	stock, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil {
		return SeedRow{}, fmt.Errorf("línea %d: stock inválido %q", line, rec[3])
	}
	return SeedRow{Line: line, Name: rec[0], CostPrice: cost, SellPrice: sell, Stock: stock}, nil
}

// SeedProducts crea cada fila en branchID. Duplicados y filas inválidas se informan en
// warn y se omiten; cualquier otro error corta la carga.
func SeedProducts(ctx context.Context, uc ProductCreator, branchID string, rows []SeedRow, warn io.Writer) (SeedResult, error) {
	var res SeedResult
	sess := systemSession()
	for _, row := range rows {
		row := row
		_, err := uc.Create(ctx, sess, dto.CreateProductRequest{
			BranchID:  branchID,
			Name:      row.Name,
			CostPrice: &row.CostPrice,
			SellPrice: &row.SellPrice,
			Stock:     &row.Stock,
		})
		var verr *domain.ValidationError
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, domain.ErrDuplicate):
			res.Skipped++
			fmt.Fprintf(warn, "línea %d: %q ya existe, se omite\n", row.Line, row.Name)
		case errors.As(err, &verr):
			res.Skipped++
			fmt.Fprintf(warn, "línea %d: %s: %s\n", row.Line, verr.Field, verr.Message)
		default:
			return res, fmt.Errorf("línea %d: %w", row.Line, err)
		}
	}
	return res, nil
}
