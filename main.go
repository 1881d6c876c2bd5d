package main

import "github.com/hovosukiasyan/calorie-tracker/cmd/kcal"

func main() {
	kcal.Execute()
}
