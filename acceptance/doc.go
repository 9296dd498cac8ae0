// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package acceptance models answer acceptance on a question.

A question moves from Unanswered to HasAnswers when its first answer is
posted, and to Accepted when its owner accepts one. Accepted is final: a
second accept leaves the accepted answer unchanged and fails with
ErrAlreadyAccepted.

Thread is the question page. Accept and DeleteAnswer are optimistic and
roll back when the server refuses:

	th, err := acceptance.OpenThread(ctx, c, questionID, sess.UserID)
	if err != nil {
		return err
	}
	if _, err := th.Accept(ctx, answerID); err != nil {
		fmt.Println(client.Message(err))
	}
*/
package acceptance
