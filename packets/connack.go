/*
 * MIT License
 *
 * Copyright (c) 2022-2022 waj334
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package packets

// ConnackReturnCode values (spec.md §6).
const (
	ConnackAccepted               byte = 0
	ConnackUnacceptableProtocol   byte = 1
	ConnackIdentifierRejected     byte = 2
	ConnackServerUnavailable      byte = 3
	ConnackBadUsernameOrPassword  byte = 4
	ConnackNotAuthorized          byte = 5
)

// Connack is the decoded CONNACK variable header.
type Connack struct {
	SessionPresent bool
	ReturnCode     byte
}

// UnpackConnack decodes the variable header of a CONNACK packet whose fixed
// header has already been consumed. body must hold exactly
// hdr.RemainingLength bytes.
func UnpackConnack(body []byte) (Connack, int, error) {
	if len(body) < 2 {
		return Connack{}, 0, nil
	}
	return Connack{
		SessionPresent: body[0]&0x01 != 0,
		ReturnCode:     body[1],
	}, 2, nil
}
