/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/baking-contest/webapp/cmd"

func main() {
	cmd.Execute()
}
