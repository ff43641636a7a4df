package main

import (
	"fmt"
	"net/http"

	"github.com/easyreserv/attendance-backend-go/internal/config"
	appHTTP "github.com/easyreserv/attendance-backend-go/internal/handler/http"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/clock"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/database"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/qrcode"
	"github.com/easyreserv/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/easyreserv/attendance-backend-go/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	scheduleRepo := postgresql.NewScheduleRepository(db)
	eventRepo := postgresql.NewAttendanceEventRepository(db)
	staffRepo := postgresql.NewStaffRepository(db)
	restaurantRepo := postgresql.NewRestaurantRepository(db)
	txManager := postgresql.NewTxManager(db)

	qrService := qrcode.NewService(cfg.QR.Secret, cfg.QR.TTL)

	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		clock.NewSystemClock(),
		scheduleRepo,
		eventRepo,
		staffRepo,
		restaurantRepo,
	)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, qrService)
	restaurantHandler := appHTTP.NewRestaurantHandler(restaurantRepo, qrService)

	router := appHTTP.NewRouter(cfg.App.Env, attendanceHandler, restaurantHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
