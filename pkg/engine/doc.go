// SPDX-License-Identifier: MPL-2.0

// Package engine applies activated plugins to an archive.
//
// One pass runs four stages in fixed order: global_before, per_binary_file,
// per_text_file and global. Within a stage, plugins run in activation order
// and each plugin's actions in declared order. The per-file stages take a
// snapshot of the entry paths when the stage starts, skip directories and
// entries removed before they are reached, and thread the entry's content
// through every matching action before writing the final value back.
//
// Actions run one at a time. The first failing action aborts the pass and no
// archive is produced. Cancellation is observed between stages only.
package engine
