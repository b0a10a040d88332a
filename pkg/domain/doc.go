/*
Package domain contains the core domain models of the agent configuration wizard.

It defines the entities the wizard state machine works with: step definitions,
the accumulated draft of answers, derived field schemas and the frozen
configuration produced when the flow completes. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - StepDefinition: A position in the flow, declaring which draft keys it writes and reads.
  - Draft: The immutable mapping of answers collected by completed steps.
  - Field: One entry of a (possibly derived) step schema.
  - State: The runtime snapshot of a session (Current Step, Status, Draft, History).
  - AgentConfiguration: The frozen record handed to edit/deploy/API-access collaborators.
*/
package domain
