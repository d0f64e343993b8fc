// Package studio orchestrates credit-gated image generation.
//
// A generation is a single unit of work: authorize the account's balance,
// normalize the uploaded photo (orientation-correct, capped at 1024px on the
// longest edge), invoke the external generation model with a flow-specific
// instruction, store the output artifact, record the generation, and debit
// credits. The external call runs under a timeout and holds no locks; the
// debit happens last and independently re-validates the balance.
//
// A failed or empty model response costs nothing and leaves no record.
package studio
