package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/apperr"
	"backoffice/internal/config"
	"backoffice/internal/costing"
	"backoffice/internal/db"
	"backoffice/internal/domain"
	"backoffice/internal/excel"
	"backoffice/internal/logger"
	"backoffice/internal/repository"
	"backoffice/internal/service"
)

type options struct {
	filePath       string
	batchNumber    string
	purchaseDate   string
	purchaseTotal  string
	shippingCost   string
	customsFees    string
	additionalFees string
	notes          string
	dryRun         bool
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		ServiceName: cfg.ServiceName + "-import",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
		Output:      os.Stderr,
	})

	if err := run(context.Background(), cfg, log, opts, os.Stdout); err != nil {
		log.Error(context.Background(), "import.failed", err)
		if typed := apperr.As(err); typed != nil && typed.Details() != nil {
			fmt.Fprintf(os.Stderr, "details: %v\n", typed.Details())
		}
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.filePath, "file", "", "path to the batch items xlsx (product, quantity, unit cost)")
	flag.StringVar(&opts.batchNumber, "number", "", "batch number; generated as LOT-YYYYMM-NNN when empty")
	flag.StringVar(&opts.purchaseDate, "purchase-date", "", "purchase date YYYY-MM-DD (default today)")
	flag.StringVar(&opts.purchaseTotal, "purchase-total", "", "purchase total cost (default: sum of quantity x unit cost)")
	flag.StringVar(&opts.shippingCost, "shipping", "", "shipping cost")
	flag.StringVar(&opts.customsFees, "customs", "", "customs fees")
	flag.StringVar(&opts.additionalFees, "additional", "", "additional fees")
	flag.StringVar(&opts.notes, "notes", "", "free-form notes")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "print the cost allocation without creating the batch")
	flag.Parse()
	if strings.TrimSpace(opts.filePath) == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		flag.Usage()
		os.Exit(2)
	}
	return opts
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger, opts options, out io.Writer) error {
	file, err := os.Open(opts.filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.filePath, err)
	}
	defer file.Close()

	rows, err := excel.ParseBatchItems(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.filePath, err)
	}

	input, err := buildInput(opts, cfg.Location)
	if err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, db.PoolOptions{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
	})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	svc := service.New(repository.New(pool), service.Options{Logger: log, Location: cfg.Location})
	items, err := svc.ResolveImportRows(ctx, rows)
	if err != nil {
		return err
	}
	input.Items = items
	if !input.PurchaseTotalCost.Valid {
		input.PurchaseTotalCost = decimal.NewNullDecimal(linesTotal(items))
	}

	if opts.dryRun {
		preview, err := previewBatch(ctx, svc, input)
		if err != nil {
			return err
		}
		printReport(out, costing.Evaluate(preview))
		return nil
	}

	report, err := svc.CreateBatch(ctx, input)
	if err != nil {
		return err
	}
	log.Info(log.WithFields(ctx, map[string]any{
		"batch_id":     report.Batch.ID,
		"batch_number": report.Batch.BatchNumber,
		"rows":         len(rows),
	}), "import.complete")
	printReport(out, report)
	return nil
}

func buildInput(opts options, loc *time.Location) (domain.BatchCreateInput, error) {
	input := domain.BatchCreateInput{BatchNumber: opts.batchNumber}

	purchased := time.Now().In(loc)
	if value := strings.TrimSpace(opts.purchaseDate); value != "" {
		parsed, err := time.Parse("2006-01-02", value)
		if err != nil {
			return input, fmt.Errorf("invalid -purchase-date %q: expected YYYY-MM-DD", value)
		}
		purchased = parsed
	}
	input.PurchaseDate = time.Date(purchased.Year(), purchased.Month(), purchased.Day(), 0, 0, 0, 0, time.UTC)

	amounts := []struct {
		flag   string
		raw    string
		target *decimal.NullDecimal
	}{
		{"-purchase-total", opts.purchaseTotal, &input.PurchaseTotalCost},
		{"-shipping", opts.shippingCost, &input.ShippingCost},
		{"-customs", opts.customsFees, &input.CustomsFees},
		{"-additional", opts.additionalFees, &input.AdditionalFees},
	}
	for _, amount := range amounts {
		value := strings.TrimSpace(amount.raw)
		if value == "" {
			continue
		}
		parsed, err := decimal.NewFromString(value)
		if err != nil {
			return input, fmt.Errorf("invalid %s %q: %w", amount.flag, value, err)
		}
		*amount.target = decimal.NewNullDecimal(parsed)
	}

	if notes := strings.TrimSpace(opts.notes); notes != "" {
		input.Notes = &notes
	}
	return input, nil
}

func linesTotal(items []domain.BatchItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// previewBatch assembles the batch in memory so the allocation can be shown
// without writing anything. Lines that cannot be costed are rejected.
func previewBatch(ctx context.Context, svc *service.Service, input domain.BatchCreateInput) (domain.Batch, error) {
	batch := domain.Batch{
		BatchNumber:       input.BatchNumber,
		PurchaseDate:      input.PurchaseDate,
		PurchaseTotalCost: input.PurchaseTotalCost.Decimal,
		ShippingCost:      input.ShippingCost,
		CustomsFees:       input.CustomsFees,
		AdditionalFees:    input.AdditionalFees,
		Status:            domain.BatchStatusOrdered,
	}
	if batch.BatchNumber == "" {
		batch.BatchNumber = "(preview)"
	}
	for i, item := range input.Items {
		product, err := svc.GetProduct(ctx, item.ProductID)
		if err != nil {
			return batch, err
		}
		batch.Items = append(batch.Items, domain.BatchItem{
			ID:        int64(i + 1),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			Product:   *product,
		})
	}
	if fields := costing.ValidateCosts(batch); len(fields) > 0 {
		return batch, apperr.Validation("batch cannot be costed", fields)
	}
	return batch, nil
}

func printReport(out io.Writer, report costing.BatchReport) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(out, "batch %s  purchased %s  %s\n", report.Batch.BatchNumber, report.Batch.PurchaseDate.Format("2006-01-02"), report.StatusLabel)
	fmt.Fprintln(tw, "product\tqty\tunit cost\tallocated\tcost price\tprice\tmargin %\t")
	for i, item := range report.Items {
		allocated := report.Allocation.Items[i].AllocatedFees
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t\n",
			item.ProductName, item.Quantity,
			item.UnitCost.StringFixed(0), allocated.StringFixed(0), item.CostPrice.StringFixed(0),
			item.Price.StringFixed(0), costing.FormatPercent(item.MarginPercentage))
	}
	_ = tw.Flush()
	s := report.Summary
	fmt.Fprintf(out, "investment %s  potential revenue %s  potential profit %s  roi %s%%\n",
		s.TotalInvestment.StringFixed(0), s.TotalPotentialRevenue.StringFixed(0),
		s.TotalPotentialProfit.StringFixed(0), costing.FormatPercent(s.ROIPercentage))
}
