// Command storectl drives demonstration stores from the command line.
package main

func main() {
	Execute()
}
