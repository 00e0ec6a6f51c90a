package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ignatzorin/complaint-voice-backend/internal/db"
	"github.com/ignatzorin/complaint-voice-backend/internal/models"
	"github.com/ignatzorin/complaint-voice-backend/internal/repository"
	"github.com/ignatzorin/complaint-voice-backend/internal/service"
)

// Утилита создания учётной записи оператора ops API.
// Регистрации через HTTP нет: учётки заводит администратор.
func main() {
	username := flag.String("username", "", "логин оператора")
	password := flag.String("password", "", "пароль (не менее 8 символов)")
	name := flag.String("name", "", "отображаемое имя")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("addoperator: укажите -username и -password")
	}
	if *name == "" {
		*name = *username
	}

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("addoperator: .env не найден, используем переменные окружения: %v", err)
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("addoperator: DATABASE_URL обязателен")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbConn, err := db.NewPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("addoperator: ошибка подключения к базе: %v", err)
	}
	defer dbConn.Close()

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatalf("addoperator: %v", err)
	}

	op := &models.Operator{
		ID:           uuid.New(),
		Username:     *username,
		PasswordHash: hash,
		DisplayName:  *name,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := repository.NewOperatorRepository(dbConn).Create(ctx, op); err != nil {
		log.Fatalf("addoperator: не удалось создать оператора: %v", err)
	}

	log.Printf("addoperator: оператор %s создан, id=%s", op.Username, op.ID)
}
