/*
Package arbor is a hierarchical task network (HTN) planner: it decomposes
high-level tasks into ordered lists of execution units by recursively
trying prioritized methods against a simulated world state.

# Concept

A domain describes the work: primitive tasks bound to execution units,
compound tasks with alternative decomposition methods, conditions gating
both, and expected effects that let the planner simulate each step's
outcome before committing to the next. The planner walks the network
depth-first, backtracking across method alternatives, and returns the
plan together with the method traversal record (MTR) behind it. Feeding
a previous MTR back in as a reference makes replanning incremental: whole
branches that cannot beat the recorded decisions are culled, and a new
plan is only worth keeping when it ranks at least as high.

# Key Features

  - Deterministic Planning: method priority plus declared order fully
    determine the search, so the same domain and state always produce the
    same plan.
  - Hexagonal Architecture: the planning core is decoupled from adapters
    (domain repositories, plan stores, HTTP/MCP transports).
  - Plan Sessions: stored plan records with per-session locking and an
    incremental replanning driver.
  - Strict Contracts: domains fail closed at build time on dangling
    references, unknown actions, and uncompilable conditions.

# Usage

Point New at a domain repository (one task definition per Markdown, JSON,
or YAML document), or build a domain in code and use NewFromDomain.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/arborhq/arbor"
	)

	func main() {
		planner, err := arbor.New("./domains/delivery")
		if err != nil {
			log.Fatal(err)
		}

		res, err := planner.Plan(context.Background(), map[string]any{
			"fuel": 80,
		})
		if err != nil {
			log.Fatal(err)
		}

		for _, unit := range res.Plan.Units() {
			fmt.Println(unit)
		}
	}
*/
package arbor
