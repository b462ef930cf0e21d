package autograde_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/autograde"
	"github.com/aretw0/autograde/pkg/catalog"
	"github.com/aretw0/autograde/pkg/domain"
)

const shellCatalog = `
start_message: Welcome to the shell tutorial.
end_message: That's everything.
exercises:
  - name: pwd
    command_regex: pwd
    start_message: Print your working directory.
    win_message: "You are in {{.Output}}"
  - name: greet
    command_regex: export
    env_var_conditions:
      - name: GREETING
        state: present
        value_regex: hello
    start_message: Export GREETING=hello.
    win_message: Exported.
`

// ExampleNew demonstrates grading a single learner with an in-memory catalogue.
func ExampleNew() {
	cat, err := catalog.Load(strings.NewReader(shellCatalog), nil)
	if err != nil {
		log.Fatal(err)
	}

	tutor := autograde.New(cat)
	tr, err := tutor.NewTracker()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	fmt.Println(tr.StartMessage())

	// 1. Skipping ahead is rejected
	_, err = tr.Submit(ctx, domain.UserState{ExerciseName: "greet", Command: "export GREETING=hello"})
	fmt.Println(err)

	// 2. Complete the first exercise
	res, err := tr.Submit(ctx, domain.UserState{ExerciseName: "pwd", Command: "pwd", Output: "/home/learner"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Text)

	// 3. Complete the second exercise
	res, err = tr.Submit(ctx, domain.UserState{
		ExerciseName: "greet",
		Command:      "export GREETING=hello",
		Environ:      map[string]string{"GREETING": "hello"},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Text)

	// Output:
	// Welcome to the shell tutorial.
	// Print your working directory.
	// Required exercise not complete: pwd
	// You are in /home/learner
	// Export GREETING=hello.
	// Exported.
	// That's everything.
}
