// Command mastercoder plans a coding task as a team of capability-tagged
// agents and runs them phase by phase.
package main

func main() {
	Execute()
}
