package main

import "smartbudget/cmd"

// @title Smart Budget API
// @version 1.0
// @description Personal budgeting API: expenses, monthly budget, savings goals and exports
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cmd.Execute()
}
