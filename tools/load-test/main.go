package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"timesheets.service/internal/client"
	"timesheets.service/internal/contract"
)

type options struct {
	server      string
	employees   int
	shifts      int
	concurrency int
}

type results struct {
	success atomic.Int64
	failed  atomic.Int64
}

func (r *results) record(err error) {
	if err != nil {
		r.failed.Add(1)
		return
	}
	r.success.Add(1)
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:   "load-test",
		Short: "Register employees under one employer and run clock-in/clock-out cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8080", "API base URL")
	cmd.Flags().IntVar(&opts.employees, "employees", 500, "number of employee accounts")
	cmd.Flags().IntVar(&opts.shifts, "shifts", 2, "clock-in/clock-out cycles per employee")
	// Limits concurrent employees to avoid local port exhaustion
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 50, "employees running at once")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	tag := uuid.NewString()[:8]
	employer := "load-employer-" + tag

	boss := client.New(opts.server, &client.MemoryStore{})
	if _, err := boss.Register(ctx, contract.RegisterRequest{
		Username: employer,
		Email:    employer + "@example.com",
		Password: "load-test",
		Role:     "EMPLOYER",
	}); err != nil {
		return fmt.Errorf("registering employer: %w", err)
	}

	totalRequests := opts.employees * (1 + 2*opts.shifts)
	fmt.Printf("Starting load test: %d employees (%d shifts each) against %s with concurrency %d\n",
		opts.employees, opts.shifts, opts.server, opts.concurrency)

	var (
		wg  sync.WaitGroup
		res results
	)
	sem := make(chan struct{}, opts.concurrency)
	startTime := time.Now()

	for i := 0; i < opts.employees; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(n int) {
			defer wg.Done()
			defer func() { <-sem }()

			username := fmt.Sprintf("load-%s-emp-%d", tag, n)
			c := client.New(opts.server, &client.MemoryStore{})
			_, err := c.Register(ctx, contract.RegisterRequest{
				Username:         username,
				Email:            username + "@example.com",
				Password:         "load-test",
				Role:             "EMPLOYEE",
				EmployerUsername: &employer,
			})
			res.record(err)
			if err != nil {
				res.failed.Add(int64(2 * opts.shifts))
				return
			}

			for j := 0; j < opts.shifts; j++ {
				res.record(c.ClockIn(ctx))
				res.record(c.ClockOut(ctx))
			}
		}(i)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", res.success.Load())
	fmt.Printf("Failed:         %d\n", res.failed.Load())
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
	return nil
}
