/*
Package domain contains the core domain models and planning logic for the Arbor engine.

It defines the fundamental entities of a hierarchical task network, such as Tasks,
Methods, the world State, and the Method Traversal Record. This package is kept
free of I/O and persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Task: A named unit of work. Primitive tasks map to an executable action;
    compound tasks decompose through prioritized Methods.
  - Method: A named, prioritized, conditionally-applicable recipe that expands
    a compound task into subtasks under ordering constraints.
  - State: The world state a plan is computed against. Treated as an immutable
    value; every transform produces a new State.
  - Plan: The ordered sequence of action invocations the planner emits.
  - MTR: The Method Traversal Record, the history of method choices behind a
    plan, used for priority comparison and plan culling.
  - DebugNode: An optional trace of decomposition decisions.

A Domain is assembled from a Config by New, which validates ordering
constraints, the action registry, and condition expressions, and is read-only
afterwards. Domains are safe to share across concurrent planning calls.
*/
package domain
