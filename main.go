package main

import "github.com/nekruzvatanshoev/carshop/pkg/cmd"

func main() {
	cmd.Execute()
}
