package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/kommo"
)

// Cria um lead de teste no Kommo usando a mesma configuração do serviço.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Aviso: arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	cfg := config.Parse()
	client := kommo.NewClient(cfg.KommoBaseURL, cfg.KommoAPIToken, cfg.KommoStatusID)
	if !client.Configured() {
		log.Fatal("❌ KOMMO_BASE_URL e KOMMO_API_TOKEN devem estar configurados no .env")
	}

	input := kommo.CreateLeadInput{
		Name:     "Joao Teste da Silva",
		Phone:    "+556199767638",
		Email:    "joao.teste@email.com",
		Subject:  "Teste de integração",
		Source:   "manual",
		Campaign: "smoke-test",
	}

	fmt.Println("🔄 Criando lead no Kommo...")
	fmt.Printf("   Nome: %s\n", input.Name)
	fmt.Printf("   Email: %s\n", input.Email)
	fmt.Printf("   Tags: %v\n\n", input.Tags())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	leadID, err := client.CreateLead(ctx, input)
	if err != nil {
		log.Fatalf("Erro ao criar lead no Kommo: %v", err)
	}

	accountID := os.Getenv("KOMMO_ACCOUNT_ID")
	if accountID == "" {
		accountID = "liguemedicina"
	}

	fmt.Printf("Lead criado com sucesso no Kommo!\n")
	fmt.Printf(" ID do Lead: #%d\n", leadID)
	fmt.Printf(" Link: https://%s.kommo.com/leads/detail/%d\n", accountID, leadID)
}
