// Package familykit provides the permission engine of a family task and
// allowance tracker.
//
// Two roles exist, Parent and Child, with no hierarchy between them. Every
// request is reduced to a CheckContext (resource type, operation, role, and
// optionally the acting user and target resource) and evaluated against a
// per-resource-type policy.
//
// # Core Concepts
//
// Policy: For one resource type, the roles allowed per operation, the
// operations requiring the actor to own the resource, and custom predicates
// per operation. Resource types without a policy deny everything.
//
// Verdict: The outcome of a check. A denial carries an ErrorCode, a message
// and an HTTP status (403 for denials, 500 for internal failures).
//
// Repository: The ownership collaborator. It loads a resource by ID so the
// checker can compare the owner field (owner_id for families, child_id for
// work, user_id otherwise) with the actor.
//
// # Evaluation Order
//
//  1. Role: the actor's role must be listed for the operation.
//  2. Custom checks: every predicate must pass, in declaration order.
//  3. Ownership: when required and both IDs are known, the actor must own the resource.
//
// The first failing step decides the verdict.
//
// # Basic Usage
//
//	// 1. Build the guard with the default policy table
//	guard := familykit.Initialize(nil, familykit.WithLogger(logger))
//
//	// 2. Register ownership repositories
//	familykit.RegisterTableRepositories(guard, db.Bun())
//
//	// 3. Check permissions
//	v := guard.Checker().CheckPermission(ctx, familykit.CheckContext{
//	    ResourceType:   familykit.ResourceWork,
//	    Operation:      familykit.OperationUpdate,
//	    UserRole:       familykit.RoleChild,
//	    UserID:         childID,
//	    ResourceID:     workID,
//	    AdditionalData: map[string]any{familykit.WorkApprovedKey: work.IsApproved},
//	})
//	if !v.Success {
//	    http.Error(w, v.ErrorMessage, v.StatusCode)
//	}
//
// # Dynamic Policies
//
//	registry := familykit.NewPolicyRegistry()
//	registry.Define("allowance").
//	    Allow(familykit.OperationRead, familykit.RoleParent, familykit.RoleChild).
//	    Allow(familykit.OperationUpdate, familykit.RoleParent).
//	    RequireOwnership(familykit.OperationUpdate)
//
// UpdatePolicy replaces whole sub-maps: patching AllowedRoles with a single
// operation drops every other operation of that policy.
//
// # HTTP Middleware
//
//	mw := familykit.NewMiddleware(guard,
//	    familykit.WithActorExtractor(familykit.ActorFromHeaders("X-User-ID", "X-User-Role")),
//	)
//	router.Use(mw.InjectRequestContext())
//	router.Handle("/tasks/{taskID}",
//	    mw.RequirePermission("task.update", familykit.ResourceFromParam("taskID"))(updateTask))
//
// # Database
//
// Migrations returns the schema of the resource tables for dbkit:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	result, err := db.Migrate(ctx, familykit.Migrations())
package familykit
