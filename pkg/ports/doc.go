/*
Package ports defines the driven-side interfaces of the planner.

These interfaces decouple the planning core from external backends, so the
same sessions, replanning driver, and CLI work against any storage or
domain-definition source.

# Key Interfaces

  - PlanStore: persists accepted plan records for later replanning.
  - DomainSource: supplies a built domain (e.g. the loam repository adapter).
  - Watchable: change notification for hot reload.
  - DistributedLocker: cross-instance session locking.

The tests subpackage carries reusable contract suites; every adapter
implementing a port runs the matching suite.
*/
package ports
