/*
Package autograde grades learners working through an ordered curriculum of
shell exercises.

A learner runs a command, and the host (a shell hook, a web terminal or an
agent) submits a snapshot of what happened: the exercise the learner is
attempting, the command line, its output, the working directory and the
environment. Autograde checks the snapshot against the exercise's rules and,
when everything matches, marks the exercise complete and unlocks the next one.

# Concept

A catalogue lists exercises in sequence order. Each exercise carries optional
prefix-anchored regular expressions for the command, output and working
directory, filesystem conditions (a path must or must not exist, be a file or
a directory, hold some content) and environment conditions. An exercise may
instead delegate to an eject hook, either a Go function registered by name or
an expression, which decides completion on its own.

Grading is strictly ordered: an exercise is only gradable once every exercise
before it is complete. Rejections carry a human readable reason meant to be
shown to the learner verbatim.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/autograde"
		"github.com/aretw0/autograde/pkg/domain"
	)

	func main() {
		ctx := context.Background()
		tutor, err := autograde.Open(ctx, "./exercises.yaml", nil)
		if err != nil {
			log.Fatal(err)
		}

		sessions := tutor.Sessions()
		start, _ := sessions.StartMessage(ctx, "alice")
		fmt.Println(start)

		res, err := sessions.Submit(ctx, "alice", domain.UserState{
			ExerciseName: "pwd",
			Command:      "pwd",
			Output:       "/home/alice",
		})
		if err != nil {
			fmt.Println(err) // the rejection reason
			return
		}
		fmt.Println(res.Text)
	}

The cmd/autograde binary serves the same sessions over HTTP and MCP.
*/
package autograde
