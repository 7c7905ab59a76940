/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package bytecode

// skipCode reads the instruction stream of a code unit.
// Instructions do not contribute to the ABI, but their operands
// have to be decoded to find the end of the code unit.
func (m *compiledModule) skipCode(r *reader) {
	count := r.count(bytecodeCountMax)

	for i := 0; i < count; i++ {
		offset := r.offset()
		opcode := Opcode(r.u8())

		info, ok := opcodeInfos[opcode]
		if !ok {
			panic(newMalformedModuleError(offset, "%s: unknown opcode 0x%x", r.what, uint8(opcode)))
		}
		if m.version < info.minVersion {
			panic(newMalformedModuleError(
				offset,
				"%s: opcode 0x%x requires version %d",
				r.what,
				uint8(opcode),
				info.minVersion,
			))
		}

		switch info.operand {
		case operandNone:
			break

		case operandCodeOffset:
			targetOffset := r.offset()
			target := r.uleb(bytecodeCountMax)
			if int(target) >= count {
				panic(newMalformedModuleError(
					targetOffset,
					"%s: branch target %d out of range, code has %d instructions",
					r.what,
					target,
					count,
				))
			}

		case operandIndex:
			r.index()

		case operandIndexAndU64:
			r.index()
			r.u64()

		case operandU8:
			r.u8()

		case operandU16:
			r.skip(2)

		case operandU32:
			r.skip(4)

		case operandU64:
			r.u64()

		case operandU128:
			r.skip(16)

		case operandU256:
			r.skip(32)
		}
	}
}
