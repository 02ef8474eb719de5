/*
Package builder turns plan definitions into plan trees. It is the bridge
between the format-agnostic descriptor model (the 'config' package) and the
renderer.

Building a plan is a multi-phase process:

 1. Stage ordering: every stage becomes a node in a dag.Graph and each
    depends_on entry an edge. The topological order, with declaration order
    breaking ties, is the stage order of the plan. Unknown stages and cycles
    are errors.

 2. Job expansion: a job with backends becomes one job per backend, with the
    backend placeholder bound and the key suffixed with the backend code. A
    job with chunks is then handed to the composer's ComposeSharded, which
    multiplies it once more per shard.

 3. Composition: plan-level params are merged with job params (job wins) and
    the composer renders the job's fragments. Every failing job is reported,
    not only the first.

 4. Policy: when the definition names a policy it is bound to the finished
    plan.
*/
package builder
