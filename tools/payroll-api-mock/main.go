package main

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"timesheets.service/internal/ports/messaging"
	"timesheets.service/pkg/logger"
)

// failRate is the share of requests answered with 503, read from FAIL_RATE.
// It lets the payroll worker's retries and circuit breaker be exercised locally.
func failRate() float64 {
	rate, err := strconv.ParseFloat(os.Getenv("FAIL_RATE"), 64)
	if err != nil || rate < 0 {
		return 0
	}
	return min(rate, 1)
}

func shiftHandler(rate float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event messaging.ClockOutEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		if rand.Float64() < rate {
			log.Warn().Int64("record_id", event.RecordID).Msg("Simulating payroll outage")
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		log.Info().
			Int64("record_id", event.RecordID).
			Str("employee", event.EmployeeName).
			Str("employer", event.EmployerName).
			Float64("hours_worked", event.HoursWorked).
			Msg("Received shift")
		w.WriteHeader(http.StatusOK)
	}
}

func main() {
	logger.Setup(true)

	rate := failRate()
	r := mux.NewRouter()
	r.HandleFunc("/", shiftHandler(rate)).Methods(http.MethodPost)

	log.Info().Float64("fail_rate", rate).Msg("Payroll API mock server starting on port 8081...")
	if err := http.ListenAndServe(":8081", r); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
