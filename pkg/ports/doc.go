/*
Package ports defines the driven ports (interfaces) of the wizard.

These interfaces decouple the core logic from external implementations, allowing
the wizard to work with various storage backends and completion integrations.

# Key Interfaces

  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - WizardEngine: The stateless core consumed by render collaborators.
  - CompletionHandler: Receives the finished configuration and the chosen action.
*/
package ports
