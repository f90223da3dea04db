package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"log/slog"

	"github.com/clockwise-hr/attendance-backend-go/internal/config"
	"github.com/clockwise-hr/attendance-backend-go/internal/connector"
	"github.com/clockwise-hr/attendance-backend-go/internal/domain/record"
	appHTTP "github.com/clockwise-hr/attendance-backend-go/internal/handler/http"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/cron"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/database"
	"github.com/clockwise-hr/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/clockwise-hr/attendance-backend-go/internal/service/attendance"
	ingestService "github.com/clockwise-hr/attendance-backend-go/internal/service/ingest"
	"github.com/go-chi/jwtauth/v5"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		fmt.Println("Error loading attendance timezone:", err)
		return
	}

	punchRepo := postgresql.NewPunchRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	recordRepo := postgresql.NewRecordRepository(db)
	employeeDirectory := postgresql.NewEmployeeDirectory(db)
	leaveChecker := postgresql.NewLeaveChecker(db)
	holidayChecker := postgresql.NewHolidayChecker(db)

	var punchConnector connector.Connector
	switch cfg.Connector.Type {
	case "devicedb":
		punchConnector = connector.NewDeviceDBConnector(cfg.Connector.DSN, cfg.Connector.Timeout)
	case "memory":
		punchConnector = connector.NewMemoryConnector(nil)
	}

	ingestSvc := ingestService.NewService(punchConnector, punchRepo, logger)
	attendanceSvc := attendanceService.NewService(
		employeeDirectory,
		shiftRepo,
		punchRepo,
		recordRepo,
		leaveChecker,
		holidayChecker,
		logger,
		attendanceService.Options{
			Location:      loc,
			Workers:       cfg.Attendance.Workers,
			NoShiftStatus: record.Status(cfg.Attendance.NoShiftStatus),
		},
	)

	scheduler := cron.NewScheduler()
	jobs := cron.NewAttendanceJobs(
		ingestSvc,
		attendanceSvc,
		loc,
		cfg.Attendance.ComputeHour,
		cfg.Sync.Interval,
		cfg.Sync.Lookback,
	)
	jobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	jwtAuth := jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	syncHandler := appHTTP.NewSyncHandler(ingestSvc, cfg.Sync.Lookback)
	jobsHandler := appHTTP.NewJobsHandler(scheduler)

	router := appHTTP.NewRouter(jwtAuth, attendanceHandler, syncHandler, jobsHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
